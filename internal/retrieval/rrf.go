package retrieval

import "sort"

const rrfK = 60.0

// fuse implements the weighted reciprocal-rank fusion step: each list
// contributes w/(K+rank) per item, where w=2.0 for the base lex list
// and 1.0 otherwise, plus a positional bonus (+0.05 rank-1, +0.02
// ranks 2-3) applied once per contributing list.
func fuse(lists []RankedList) []Candidate {
	byURI := make(map[string]*Candidate)
	order := make([]string, 0)

	for _, list := range lists {
		weight := 1.0
		if list.IsBase {
			weight = 2.0
		}
		for _, item := range list.Items {
			c, ok := byURI[item.URI]
			if !ok {
				c = &Candidate{URI: item.URI, FrameID: item.FrameID, Title: item.Title, Snippet: item.Snippet, BestRank: item.Rank}
				byURI[item.URI] = c
				order = append(order, item.URI)
			}
			c.RRFScore += weight / (rrfK + float64(item.Rank))
			switch {
			case item.Rank == 1:
				c.RRFBonus += 0.05
			case item.Rank <= 3:
				c.RRFBonus += 0.02
			}
			c.Sources = append(c.Sources, list.Lane)
			if item.Rank < c.BestRank {
				c.BestRank = item.Rank
				c.Snippet = item.Snippet
				c.Title = item.Title
				c.FrameID = item.FrameID
			}
		}
	}

	candidates := make([]Candidate, 0, len(order))
	for _, uri := range order {
		candidates = append(candidates, *byURI[uri])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RRFScore+candidates[i].RRFBonus > candidates[j].RRFScore+candidates[j].RRFBonus
	})
	for i := range candidates {
		candidates[i].RRFRank = i + 1
		candidates[i].FinalScore = candidates[i].RRFScore + candidates[i].RRFBonus
	}
	return candidates
}
