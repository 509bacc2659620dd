package hooks

import (
	"context"

	"github.com/aethervault/aether-core/internal/retrieval"
)

type rerankCandidateWire struct {
	Key     string `json:"key"`
	URI     string `json:"uri"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
	FrameID uint64 `json:"frame_id"`
	Text    string `json:"text,omitempty"`
}

type rerankRequest struct {
	Query      string                 `json:"query"`
	Candidates []rerankCandidateWire `json:"candidates"`
}

type rerankResponse struct {
	Scores   map[string]float32 `json:"scores"`
	Snippets map[string]string  `json:"snippets"`
	Warnings []string           `json:"warnings"`
}

// RerankHook adapts a child-process rerank hook to retrieval.RerankHook.
type RerankHook struct {
	Spec Spec
}

func (h RerankHook) Rerank(ctx context.Context, query string, candidates []retrieval.RerankCandidate) (map[string]float32, map[string]string, []string, error) {
	wire := make([]rerankCandidateWire, len(candidates))
	for i, c := range candidates {
		wire[i] = rerankCandidateWire{Key: c.Key, URI: c.URI, Title: c.Title, Snippet: c.Snippet, FrameID: c.FrameID, Text: c.Text}
	}
	var resp rerankResponse
	if err := Run(ctx, h.Spec, rerankRequest{Query: query, Candidates: wire}, &resp); err != nil {
		return nil, nil, nil, err
	}
	return resp.Scores, resp.Snippets, resp.Warnings, nil
}
