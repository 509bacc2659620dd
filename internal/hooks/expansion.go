package hooks

import (
	"context"
	"time"

	"github.com/aethervault/aether-core/internal/query"
)

type expansionRequest struct {
	Query         string  `json:"query"`
	MaxExpansions int     `json:"max_expansions"`
	Scope         string  `json:"scope,omitempty"`
	Before        *string `json:"before,omitempty"`
	After         *string `json:"after,omitempty"`
	Asof          *string `json:"asof,omitempty"`
}

type expansionResponse struct {
	Lex      []string `json:"lex"`
	Vec      []string `json:"vec"`
	Warnings []string `json:"warnings"`
}

// ExpansionHook adapts a child-process expansion hook to
// query.ExpansionHook.
type ExpansionHook struct {
	Spec Spec
}

func (h ExpansionHook) Expand(q string, maxExpansions int, scope string, temporal query.TemporalFilter) ([]string, []string, []string, error) {
	req := expansionRequest{
		Query:         q,
		MaxExpansions: maxExpansions,
		Scope:         scope,
		Before:        formatTime(temporal.Before),
		After:         formatTime(temporal.After),
		Asof:          formatTime(temporal.Asof),
	}
	var resp expansionResponse
	if err := Run(context.Background(), h.Spec, req, &resp); err != nil {
		return nil, nil, nil, err
	}
	return resp.Lex, resp.Vec, resp.Warnings, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
