package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

// TestRegistryReconnectsAfterSidecarDeath drives a fake sidecar,
// spawned as a subprocess of the test binary itself, through the
// full dead-and-reconnect lifecycle: a first call succeeds, the
// sidecar then closes its stdout (simulating a crash), a second call
// observes the closed pipe and marks the server dead, and a third
// call reconnects a fresh sidecar process and succeeds again.
func TestRegistryReconnectsAfterSidecarDeath(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns real subprocesses")
	}

	cfg := Config{
		Name:    "fake",
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess"},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1"},
	}

	reg := NewRegistry(slog.Default())
	ctx := context.Background()
	if err := reg.Spawn(ctx, cfg); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	defer reg.Shutdown()

	reg.mu.RLock()
	first := reg.servers["fake"]
	reg.mu.RUnlock()
	t.Cleanup(func() { first.terminate() })

	text, isErr, err := reg.CallTool(ctx, "mcp__fake__echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if isErr || text != "echo: hi" {
		t.Fatalf("first call: got %q isError=%v", text, isErr)
	}

	// The helper closes its stdout right after replying. Give the
	// readLoop goroutine time to observe the closed pipe before the
	// second call fires.
	time.Sleep(200 * time.Millisecond)

	if _, _, err := reg.CallTool(ctx, "mcp__fake__echo", map[string]any{"text": "hi"}); err == nil {
		t.Fatal("second call: expected an error observing the closed sidecar")
	}

	reg.mu.RLock()
	state := reg.servers["fake"].getState()
	reg.mu.RUnlock()
	if state != StateDead {
		t.Fatalf("after second call: want state %s, got %s", StateDead, state)
	}

	text, isErr, err = reg.CallTool(ctx, "mcp__fake__echo", map[string]any{"text": "again"})
	if err != nil {
		t.Fatalf("third call after reconnect: %v", err)
	}
	if isErr || text != "echo: again" {
		t.Fatalf("third call after reconnect: got %q isError=%v", text, isErr)
	}
}

// TestHelperProcess is not a real test. It is exec'd as a subprocess
// by TestRegistryReconnectsAfterSidecarDeath (GO_WANT_HELPER_PROCESS
// gates it so a plain `go test` run treats it as a no-op) and speaks
// just enough of the sidecar side of the protocol to bootstrap, serve
// one tool, and then go quiet.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)
	runFakeSidecar()
}

// runFakeSidecar answers initialize, notifications/initialized, and
// tools/list like a real MCP server advertising a single "echo" tool,
// then answers exactly one tools/call before closing its stdout and
// quietly draining stdin — simulating a sidecar that has stopped
// responding but whose process is still alive, rather than one that
// has exited outright.
func runFakeSidecar() {
	in := bufio.NewReader(os.Stdin)
	for {
		body, err := readMessage(in)
		if err != nil {
			return
		}
		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			return
		}
		id := req.ID
		switch req.Method {
		case "initialize":
			writeMessage(os.Stdout, response{JSONRPC: "2.0", ID: &id, Result: json.RawMessage(`{}`)})
		case "notifications/initialized":
			// no reply expected
		case "tools/list":
			result, _ := json.Marshal(toolsListResult{Tools: []ToolDescriptor{{Name: "echo"}}})
			writeMessage(os.Stdout, response{JSONRPC: "2.0", ID: &id, Result: result})
		case "tools/call":
			params, _ := req.Params.(map[string]any)
			args, _ := params["arguments"].(map[string]any)
			text, _ := args["text"].(string)
			result, _ := json.Marshal(callToolResult{Content: []contentBlock{{Type: "text", Text: "echo: " + text}}})
			writeMessage(os.Stdout, response{JSONRPC: "2.0", ID: &id, Result: result})
			os.Stdout.Close()
			io.Copy(io.Discard, in)
			return
		}
	}
}
