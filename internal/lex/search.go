package lex

import (
	"sort"
	"strings"
)

// Span is a [start,end) byte range of a match within a section's
// lowercased content.
type Span struct {
	Start, End int
}

// Hit is one frame's best-scoring section match.
type Hit struct {
	FrameID     uint64
	URI         string
	Title       string
	Score       int
	SectionIdx  int
	Occurrences []Span
	Snippets    []string
}

// Index is an in-memory lexical index over a set of documents.
type Index struct {
	docs []Document
}

// NewIndex builds an Index from a document set.
func NewIndex(docs []Document) *Index {
	return &Index{docs: docs}
}

func (idx *Index) Documents() []Document { return idx.docs }

// Search tokenizes query and scores every document's sections, keeping
// the best section per frame, then returns the top topK hits sorted by
// score descending.
func (idx *Index) Search(query string, topK, snippetRadius int) []Hit {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	joined := strings.Join(queryTokens, " ")

	hits := make([]Hit, 0, len(idx.docs))
	for _, doc := range idx.docs {
		bestScore := -1
		bestSection := -1
		var bestSpans []Span
		for si, sec := range doc.Sections {
			score, spans := scoreSection(sec.Content, queryTokens, joined)
			if score > bestScore {
				bestScore = score
				bestSection = si
				bestSpans = spans
			}
		}
		if bestScore <= 0 {
			continue
		}
		hit := Hit{
			FrameID:     doc.FrameID,
			URI:         doc.URI,
			Title:       doc.Title,
			Score:       bestScore,
			SectionIdx:  bestSection,
			Occurrences: bestSpans,
		}
		hit.Snippets = buildSnippets(doc.Sections[bestSection].Content, bestSpans, snippetRadius, 3)
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// scoreSection implements the single/multi-token scoring rule: for a
// single query token, collect every occurrence; for multiple tokens,
// require every token to appear at least once (AND semantics) and
// collect occurrences of each. The score is the occurrence count, with
// +1000 if the exact joined phrase appears.
func scoreSection(sectionLower string, tokens []string, joinedPhrase string) (int, []Span) {
	var spans []Span
	if len(tokens) == 1 {
		spans = findAll(sectionLower, tokens[0])
		if len(spans) == 0 {
			return 0, nil
		}
	} else {
		perToken := make([][]Span, len(tokens))
		for i, t := range tokens {
			perToken[i] = findAll(sectionLower, t)
			if len(perToken[i]) == 0 {
				return 0, nil
			}
		}
		for _, s := range perToken {
			spans = append(spans, s...)
		}
	}

	score := len(spans)
	if strings.Contains(sectionLower, joinedPhrase) {
		score += 1000
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return score, spans
}

func findAll(haystack, needle string) []Span {
	if needle == "" {
		return nil
	}
	var spans []Span
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		abs := start + idx
		spans = append(spans, Span{Start: abs, End: abs + len(needle)})
		start = abs + len(needle)
	}
	return spans
}
