// Package hooks runs the external child-process hooks the core calls
// into: the agent LLM hook, the query expansion hook, and the rerank
// hook. Each hook is invoked fresh per call — a single JSON document on
// stdin, a single JSON document on stdout — unlike the streaming
// subprocess agents in the adapter layer above the core.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

const defaultTimeout = 30 * time.Second

// Spec names one configured hook process.
type Spec struct {
	Command string
	Args    []string
	Env     []string // KEY=VALUE pairs appended to the child's environment
	Timeout time.Duration
}

// Run writes in as JSON to the child's stdin and decodes its stdout
// into out. A nonzero exit or invalid JSON is returned as an error —
// callers downgrade that to a warning rather than failing the query,
// per the hook contract.
func Run(ctx context.Context, spec Spec, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("hooks: marshal input: %w", err)
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("hooks: %s timed out after %s", spec.Command, timeout)
		}
		return fmt.Errorf("hooks: %s exited: %w (stderr: %s)", spec.Command, err, stderr.String())
	}

	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("hooks: %s produced invalid JSON: %w", spec.Command, err)
	}
	return nil
}
