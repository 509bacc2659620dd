package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aethervault/aether-core/internal/lex"
	"github.com/aethervault/aether-core/internal/search"
	"github.com/aethervault/aether-core/internal/search/parser"
	"github.com/aethervault/aether-core/internal/vec"
)

const minTopK = 20

// effectiveTopK implements "top_k = max(limit, 20)".
func effectiveTopK(limit int) int {
	if limit > minTopK {
		return limit
	}
	return minTopK
}

// lexRecords projects a lex.Document set into search.Record for field
// filter evaluation; timestamps come from the caller since the lex
// package doesn't carry them.
func lexRecords(docs []lex.Document, timestamps map[uint64]time.Time, tracks map[uint64]string, labels map[uint64][]string) []search.Record {
	out := make([]search.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, search.Record{
			FrameID:      d.FrameID,
			URI:          d.URI,
			Track:        tracks[d.FrameID],
			Timestamp:    timestamps[d.FrameID],
			Tags:         d.Tags,
			Labels:       labels[d.FrameID],
			ContentLower: d.ContentLower,
		})
	}
	return out
}

// runLexLane parses queryText for field filters/boolean operators,
// restricts the candidate document set accordingly, then scores the
// remaining free-text terms with the section-based lexical scorer.
func runLexLane(idx *lex.Index, queryText string, isBase bool, limit, snippetRadius int, records []search.Record) (RankedList, error) {
	expr, err := parser.Parse(queryText)
	if err != nil {
		return RankedList{}, err
	}
	result := search.Evaluate(expr, records)

	termQuery := strings.Join(result.Terms, " ")
	filtered := idx
	if hasFilters(expr) {
		filtered = lex.NewIndex(filterDocs(idx.Documents(), result.FrameIDs))
	}

	var hits []lex.Hit
	if strings.TrimSpace(termQuery) != "" {
		hits = filtered.Search(termQuery, effectiveTopK(limit), snippetRadius)
	} else {
		// Pure field-filter query with no free text: every matching
		// document is a hit, unscored.
		for _, d := range filtered.Documents() {
			hits = append(hits, lex.Hit{FrameID: d.FrameID, URI: d.URI, Title: d.Title})
		}
	}

	items := make([]RankedItem, 0, len(hits))
	for i, h := range hits {
		snippet := ""
		if len(h.Snippets) > 0 {
			snippet = h.Snippets[0]
		}
		items = append(items, RankedItem{
			URI:      h.URI,
			FrameID:  h.FrameID,
			Title:    h.Title,
			Snippet:  snippet,
			Rank:     i + 1,
			RawScore: float64(h.Score),
		})
	}
	return RankedList{Lane: LaneLex, Query: queryText, IsBase: isBase, Items: items}, nil
}

func hasFilters(expr parser.Expr) bool {
	found := false
	var walk func(parser.Expr)
	walk = func(e parser.Expr) {
		switch n := e.(type) {
		case parser.Term:
			if n.Field != "" || n.IsRange {
				found = true
			}
		case parser.And:
			walk(n.Left)
			walk(n.Right)
		case parser.Or:
			walk(n.Left)
			walk(n.Right)
		case parser.Not:
			walk(n.Child)
		}
	}
	walk(expr)
	return found
}

func filterDocs(docs []lex.Document, allow map[uint64]bool) []lex.Document {
	out := make([]lex.Document, 0, len(allow))
	for _, d := range docs {
		if allow[d.FrameID] {
			out = append(out, d)
		}
	}
	return out
}

// Embedder turns query text into a vector of the index's dimension.
type Embedder func(ctx context.Context, text string) ([]float32, error)

// FrameLookup resolves a frame id to its URI/title/snippet text for
// lanes that only carry ids natively (vector search).
type FrameLookup func(frameID uint64) (uri, title, snippet string, ok bool)

func runVecLane(ctx context.Context, idx vec.Index, embed Embedder, queryText string, limit int, lookup FrameLookup) (RankedList, error) {
	vector, err := embed(ctx, queryText)
	if err != nil {
		return RankedList{}, err
	}
	matches, err := idx.Search(vector, effectiveTopK(limit))
	if err != nil {
		return RankedList{}, err
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })

	items := make([]RankedItem, 0, len(matches))
	for i, m := range matches {
		uri, title, snippet, ok := lookup(m.FrameID)
		if !ok {
			continue
		}
		items = append(items, RankedItem{
			URI:      uri,
			FrameID:  m.FrameID,
			Title:    title,
			Snippet:  snippet,
			Rank:     i + 1,
			RawScore: float64(m.Distance),
		})
	}
	return RankedList{Lane: LaneVec, Query: queryText, Items: items}, nil
}

// ExternalVectorLane is an optional remote vector service (e.g. a
// Qdrant collection) searched with the raw query text.
type ExternalVectorLane interface {
	Search(ctx context.Context, queryText string, limit int) ([]RankedItem, error)
}

func runExternalVecLane(ctx context.Context, lane ExternalVectorLane, queryText string, limit int) (RankedList, error) {
	items, err := lane.Search(ctx, queryText, effectiveTopK(limit))
	if err != nil {
		return RankedList{}, err
	}
	return RankedList{Lane: LaneExternalVec, Query: queryText, Items: items}, nil
}
