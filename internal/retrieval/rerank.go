package retrieval

import (
	"context"
	"math"
	"strings"
)

// RerankMode selects how the top slice of fused candidates is
// reordered before feedback blending.
type RerankMode string

const (
	RerankNone  RerankMode = "none"
	RerankLocal RerankMode = "local"
	RerankHook  RerankMode = "hook"
)

const (
	defaultRerankDocs          = 40
	defaultRerankChunkChars    = 1200
	defaultRerankChunkOverlap  = 200
	minRerankTermLen           = 3
)

// TextFetcher resolves a candidate's canonical text for local
// reranking.
type TextFetcher func(frameID uint64) (string, error)

// RerankCandidate is what a rerank hook receives per candidate.
type RerankCandidate struct {
	Key     string // URI, used to correlate the hook's response
	URI     string
	Title   string
	Snippet string
	FrameID uint64
	Text    string // only populated when the hook wants full text
}

// RerankHook is the external rerank process contract.
type RerankHook interface {
	Rerank(ctx context.Context, query string, candidates []RerankCandidate) (scores map[string]float32, snippets map[string]string, warnings []string, err error)
}

// rerankLocal scores the top rerankDocs candidates' canonical text by
// chunked lexical overlap against query, keeping each candidate's
// best-scoring chunk as its rerank score and its display snippet (the
// chunk text replaces the lane snippet).
func rerankLocal(fetch TextFetcher, query string, candidates []Candidate, rerankDocs int) []string {
	if rerankDocs <= 0 {
		rerankDocs = defaultRerankDocs
	}
	queryLower := strings.ToLower(query)
	terms := significantTerms(queryLower)

	var warnings []string
	n := rerankDocs
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		text, err := fetch(candidates[i].FrameID)
		if err != nil {
			warnings = append(warnings, "rerank: fetch failed for "+candidates[i].URI+": "+err.Error())
			continue
		}
		bestScore := -1.0
		bestChunk := ""
		for _, chunk := range chunkText(text, defaultRerankChunkChars, defaultRerankChunkOverlap) {
			score, _ := scoreChunk(strings.ToLower(chunk), terms, queryLower)
			if score > bestScore {
				bestScore = score
				bestChunk = chunk
			}
		}
		if bestScore < 0 {
			continue
		}
		score := bestScore
		candidates[i].Rerank = &score
		if bestChunk != "" {
			candidates[i].Snippet = bestChunk
		}
	}
	return warnings
}

func significantTerms(queryLower string) []string {
	var out []string
	for _, w := range strings.Fields(queryLower) {
		if len(w) >= minRerankTermLen {
			out = append(out, w)
		}
	}
	return out
}

// scoreChunk implements raw = coverage + 0.2*phrase_bonus +
// 0.05*ln(1+freq), squashed to raw/(1+raw).
func scoreChunk(chunkLower string, terms []string, queryLower string) (float64, int) {
	if len(terms) == 0 {
		return 0, 0
	}
	present := 0
	freq := 0
	for _, t := range terms {
		count := strings.Count(chunkLower, t)
		if count > 0 {
			present++
			freq += count
		}
	}
	coverage := float64(present) / float64(len(terms))
	phraseBonus := 0.0
	if strings.Contains(chunkLower, queryLower) {
		phraseBonus = 1.0
	}
	raw := coverage + 0.2*phraseBonus + 0.05*math.Log(1+float64(freq))
	return raw / (1 + raw), freq
}

// chunkText slices content into overlapping windows of chunkChars
// runes, stepping by chunkChars-overlap, never splitting a
// multi-byte rune.
func chunkText(content string, chunkChars, overlap int) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}
	step := chunkChars - overlap
	if step <= 0 {
		step = chunkChars
	}
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
