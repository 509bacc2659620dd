package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aethervault/aether-core/internal/lex"
	"github.com/aethervault/aether-core/internal/query"
	"github.com/aethervault/aether-core/internal/search"
	"github.com/aethervault/aether-core/internal/vec"
)

// FeedbackLookup resolves a URI's aggregated feedback score, if any.
type FeedbackLookup func(uri string) (float64, bool)

// Options configures one Run of the fusion pipeline.
type Options struct {
	Plan    *query.Plan
	Limit   int
	Records []search.Record // for lexical field-filter evaluation

	LexIndex *lex.Index

	VecIndex    vec.Index // nil if no local vector index is present
	Embedder    Embedder
	FrameLookup FrameLookup

	ExternalVec ExternalVectorLane // nil if not configured

	SnippetRadius int

	RerankMode   RerankMode
	RerankDocs   int
	TextFetcher  TextFetcher
	RerankHook   RerankHook

	FeedbackWeight  float64
	FeedbackLookup  FeedbackLookup
}

// Run executes every lane from plan, fuses, reranks, and blends
// feedback. A failing lane appends a warning and is
// excluded rather than aborting the query; a query with zero
// contributing lanes returns an empty result list and warnings, not an
// error.
func Run(ctx context.Context, opts Options) (Response, error) {
	if opts.Plan == nil {
		return Response{}, fmt.Errorf("retrieval: nil plan")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	snippetRadius := opts.SnippetRadius
	if snippetRadius <= 0 {
		snippetRadius = 80
	}

	var (
		mu       sync.Mutex
		lists    []RankedList
		warnings []string
	)
	addList := func(l RankedList) {
		mu.Lock()
		defer mu.Unlock()
		lists = append(lists, l)
	}
	addWarning := func(w string) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	}

	g, gctx := errgroup.WithContext(ctx)
	_ = gctx

	if opts.LexIndex != nil {
		for i, q := range opts.Plan.LexQueries {
			q, isBase := q, i == 0
			g.Go(func() error {
				list, err := runLexLane(opts.LexIndex, q, isBase, limit, snippetRadius, opts.Records)
				if err != nil {
					addWarning(fmt.Sprintf("lex lane %q: %v", q, err))
					return nil
				}
				addList(list)
				return nil
			})
		}
	}

	if opts.VecIndex != nil && opts.Embedder != nil {
		for _, q := range opts.Plan.VecQueries {
			q := q
			g.Go(func() error {
				list, err := runVecLane(ctx, opts.VecIndex, opts.Embedder, q, limit, opts.FrameLookup)
				if err != nil {
					addWarning(fmt.Sprintf("vec lane %q: %v", q, err))
					return nil
				}
				addList(list)
				return nil
			})
		}
	}

	if opts.ExternalVec != nil {
		g.Go(func() error {
			list, err := runExternalVecLane(ctx, opts.ExternalVec, opts.Plan.CleanedQuery, limit)
			if err != nil {
				addWarning(fmt.Sprintf("external vec lane: %v", err))
				return nil
			}
			addList(list)
			return nil
		})
	}

	_ = g.Wait() // lane errors are downgraded to warnings above; Wait never returns non-nil here

	if len(lists) == 0 {
		return Response{Warnings: warnings}, nil
	}

	candidates := fuse(lists)

	if opts.RerankMode == RerankLocal && opts.TextFetcher != nil {
		warnings = append(warnings, rerankLocal(opts.TextFetcher, opts.Plan.CleanedQuery, candidates, opts.RerankDocs)...)
	} else if opts.RerankMode == RerankHook && opts.RerankHook != nil {
		w := applyRerankHook(ctx, opts.RerankHook, opts.Plan.CleanedQuery, candidates, opts.RerankDocs)
		warnings = append(warnings, w...)
	}

	applyFinalScore(candidates)

	if opts.FeedbackWeight > 0 && opts.FeedbackLookup != nil {
		applyFeedback(candidates, opts.FeedbackWeight, opts.FeedbackLookup)
	}

	truncateAndRank(&candidates, limit)

	return Response{Results: candidates, Warnings: warnings}, nil
}

func applyRerankHook(ctx context.Context, hook RerankHook, query string, candidates []Candidate, rerankDocs int) []string {
	if rerankDocs <= 0 {
		rerankDocs = defaultRerankDocs
	}
	n := rerankDocs
	if n > len(candidates) {
		n = len(candidates)
	}
	reqCandidates := make([]RerankCandidate, n)
	for i := 0; i < n; i++ {
		c := candidates[i]
		reqCandidates[i] = RerankCandidate{Key: c.URI, URI: c.URI, Title: c.Title, Snippet: c.Snippet, FrameID: c.FrameID}
	}
	scores, snippets, warnings, err := hook.Rerank(ctx, query, reqCandidates)
	if err != nil {
		return append(warnings, fmt.Sprintf("rerank hook: %v", err))
	}
	for i := 0; i < n; i++ {
		if s, ok := scores[candidates[i].URI]; ok {
			v := float64(s)
			candidates[i].Rerank = &v
		}
		if snip, ok := snippets[candidates[i].URI]; ok {
			candidates[i].Snippet = snip
		}
	}
	return warnings
}

// applyFinalScore implements: if rerank produced any scores, weight by
// RRF-rank tier (0.75/0.60/0.40) and blend with the rerank score;
// otherwise fall back to rrf_score+bonus.
func applyFinalScore(candidates []Candidate) {
	anyRerank := false
	for _, c := range candidates {
		if c.Rerank != nil {
			anyRerank = true
			break
		}
	}
	for i := range candidates {
		c := &candidates[i]
		if anyRerank && c.Rerank != nil {
			w := rerankWeight(c.RRFRank)
			c.FinalScore = w*(1.0/float64(c.RRFRank)) + (1-w)*(*c.Rerank)
		} else {
			c.FinalScore = c.RRFScore + c.RRFBonus
		}
	}
}

func rerankWeight(rrfRank int) float64 {
	switch {
	case rrfRank <= 3:
		return 0.75
	case rrfRank <= 10:
		return 0.60
	default:
		return 0.40
	}
}

func applyFeedback(candidates []Candidate, weight float64, lookup FeedbackLookup) {
	if weight > 1 {
		weight = 1
	}
	if weight < 0 {
		weight = 0
	}
	for i := range candidates {
		fb, ok := lookup(candidates[i].URI)
		if !ok {
			continue
		}
		f := fb
		candidates[i].Feedback = &f
		candidates[i].FinalScore += weight * fb
	}
}

func truncateAndRank(candidates *[]Candidate, limit int) {
	cs := *candidates
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].FinalScore > cs[j].FinalScore })
	if len(cs) > limit {
		cs = cs[:limit]
	}
	for i := range cs {
		cs[i].FinalRank = i + 1
	}
	*candidates = cs
}
