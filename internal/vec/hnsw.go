package vec

import (
	"github.com/coder/hnsw"
)

// HNSWEfConstruction and HNSWEfSearch are the graph build/search
// tunables. NewHNSW sets the graph's EfSearch from HNSWEfSearch;
// HNSWEfConstruction is not passed to the graph, and there is no
// per-query ef_search override.
const (
	HNSWEfConstruction = 100
	HNSWEfSearch        = 50
)

// HNSW wraps a coder/hnsw graph keyed by frame id. Used once a segment
// accumulates HNSWThreshold or more vectors.
type HNSW struct {
	dim   int
	graph *hnsw.Graph[uint64]
}

// NewHNSW builds a graph from entries, all of dimension dim.
func NewHNSW(dim int, entries []Entry) *HNSW {
	g := hnsw.NewGraph[uint64]()
	g.M = 16
	g.EfSearch = HNSWEfSearch
	nodes := make([]hnsw.Node[uint64], len(entries))
	for i, e := range entries {
		nodes[i] = hnsw.MakeNode(e.FrameID, hnsw.Vector(e.Vector))
	}
	g.Add(nodes...)
	return &HNSW{dim: dim, graph: g}
}

func (h *HNSW) Dimension() int { return h.dim }
func (h *HNSW) Len() int       { return h.graph.Len() }

func (h *HNSW) Search(query []float32, k int) ([]Match, error) {
	if err := checkDimension(h.dim, query); err != nil {
		return nil, err
	}
	nodes := h.graph.Search(hnsw.Vector(query), k)
	matches := make([]Match, len(nodes))
	for i, n := range nodes {
		matches[i] = Match{FrameID: n.Key, Distance: euclidean(query, []float32(n.Value))}
	}
	return matches, nil
}

// Entries returns nil: HNSW does not expose efficient full enumeration,
// matching the documented "PQ/HNSW may return empty from entries()"
// capability.
func (h *HNSW) Entries() []Entry { return nil }

func euclidean(a, b []float32) float32 { return l2(a, b) }
