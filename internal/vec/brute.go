package vec

import "sort"

// Brute is the uncompressed representation: an exhaustive L2-distance
// scan, used for segments under HNSWThreshold vectors.
type Brute struct {
	dim     int
	entries []Entry
}

// NewBrute builds an exhaustive linear-scan index. All vectors must
// share dim dimensions; NewBrute does not check this, and checkDimension
// validates only the query vector, in Search.
func NewBrute(dim int, entries []Entry) *Brute {
	return &Brute{dim: dim, entries: entries}
}

func (b *Brute) Dimension() int { return b.dim }
func (b *Brute) Len() int       { return len(b.entries) }

func (b *Brute) Search(query []float32, k int) ([]Match, error) {
	if err := checkDimension(b.dim, query); err != nil {
		return nil, err
	}
	matches := make([]Match, len(b.entries))
	for i, e := range b.entries {
		matches[i] = Match{FrameID: e.FrameID, Distance: l2(query, e.Vector)}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (b *Brute) Entries() []Entry { return b.entries }
