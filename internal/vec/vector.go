// Package vec implements the embedded vector index: a tagged union over
// an uncompressed linear scan, an HNSW graph, and a product-quantized
// variant, all behind one Search/Entries capability.
package vec

import "github.com/aethervault/aether-core/internal/verrors"

// Match is one result from a vector search: a frame id and its distance
// to the query vector (lower is closer).
type Match struct {
	FrameID  uint64
	Distance float32
}

// Entry is a raw (frame id, vector) pair, as returned by Entries(). PQ
// and HNSW representations may return nil — callers must tolerate that
// rather than assume every representation can enumerate its vectors.
type Entry struct {
	FrameID uint64
	Vector  []float32
}

// Index is the common capability every vector representation satisfies.
type Index interface {
	Dimension() int
	Len() int
	Search(query []float32, k int) ([]Match, error)
	Entries() []Entry
}

// size thresholds governing which representation a writer chooses.
const (
	HNSWThreshold = 1000
	PQThreshold   = 100
	PQSubspaces   = 96
)

func checkDimension(expected int, query []float32) error {
	if len(query) != expected {
		return verrors.VecDimensionMismatch(expected, len(query))
	}
	return nil
}

func l2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
