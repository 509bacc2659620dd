package vec

import (
	"math"
	"math/rand"
	"sort"
)

const pqCentroids = 256 // one byte per subspace code

// PQ is a product-quantized vector index: the vector space is split into
// PQSubspaces equal chunks, each chunk independently vector-quantized to
// pqCentroids centroids trained by k-means. Distance is approximated by
// summing per-subspace centroid distances (asymmetric distance
// computation against the unquantized query).
type PQ struct {
	dim        int
	subspaces  int
	subDim     int
	codebooks  [][][]float32 // [subspace][centroid][subDim]
	codes      [][]uint8     // [entry][subspace]
	frameIDs   []uint64
}

// NewPQ trains codebooks and quantizes entries. Requires at least
// PQThreshold training vectors; callers must check that before calling
// (Build falls back to Brute otherwise).
func NewPQ(dim int, entries []Entry, seed int64) *PQ {
	subspaces := PQSubspaces
	if dim < subspaces {
		subspaces = dim
	}
	subDim := dim / subspaces

	p := &PQ{dim: dim, subspaces: subspaces, subDim: subDim}
	p.codebooks = make([][][]float32, subspaces)
	rng := rand.New(rand.NewSource(seed))

	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		vectors[i] = e.Vector
	}

	for s := 0; s < subspaces; s++ {
		lo := s * subDim
		hi := lo + subDim
		if s == subspaces-1 {
			hi = dim
		}
		chunks := make([][]float32, len(vectors))
		for i, v := range vectors {
			chunks[i] = v[lo:hi]
		}
		p.codebooks[s] = kmeans(chunks, pqCentroids, rng)
	}

	p.codes = make([][]uint8, len(entries))
	p.frameIDs = make([]uint64, len(entries))
	for i, e := range entries {
		p.frameIDs[i] = e.FrameID
		p.codes[i] = p.encode(e.Vector)
	}
	return p
}

func (p *PQ) encode(v []float32) []uint8 {
	codes := make([]uint8, p.subspaces)
	for s := 0; s < p.subspaces; s++ {
		lo := s * p.subDim
		hi := lo + p.subDim
		if s == p.subspaces-1 {
			hi = p.dim
		}
		chunk := v[lo:hi]
		best, bestDist := 0, float32(math.MaxFloat32)
		for c, centroid := range p.codebooks[s] {
			d := l2(chunk, centroid)
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		codes[s] = uint8(best)
	}
	return codes
}

func (p *PQ) Dimension() int { return p.dim }
func (p *PQ) Len() int       { return len(p.codes) }

func (p *PQ) Search(query []float32, k int) ([]Match, error) {
	if err := checkDimension(p.dim, query); err != nil {
		return nil, err
	}
	// Precompute per-subspace distance tables: query chunk -> each
	// centroid's distance, so scoring an entry is a table lookup per
	// subspace rather than a full l2 recomputation.
	tables := make([][]float32, p.subspaces)
	for s := 0; s < p.subspaces; s++ {
		lo := s * p.subDim
		hi := lo + p.subDim
		if s == p.subspaces-1 {
			hi = p.dim
		}
		chunk := query[lo:hi]
		table := make([]float32, len(p.codebooks[s]))
		for c, centroid := range p.codebooks[s] {
			table[c] = l2(chunk, centroid)
		}
		tables[s] = table
	}

	matches := make([]Match, len(p.codes))
	for i, codes := range p.codes {
		var dist float32
		for s, c := range codes {
			dist += tables[s][c]
		}
		matches[i] = Match{FrameID: p.frameIDs[i], Distance: dist}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Entries returns nil: PQ stores quantized codes, not recoverable
// original vectors.
func (p *PQ) Entries() []Entry { return nil }

// kmeans runs a fixed number of Lloyd iterations to train k centroids
// over chunks. Centroids are seeded from random distinct chunks.
func kmeans(chunks [][]float32, k int, rng *rand.Rand) [][]float32 {
	if k > len(chunks) {
		k = len(chunks)
	}
	if k == 0 {
		return nil
	}
	dim := len(chunks[0])
	centroids := make([][]float32, k)
	perm := rng.Perm(len(chunks))
	for i := 0; i < k; i++ {
		centroids[i] = append([]float32(nil), chunks[perm[i]]...)
	}

	const iterations = 10
	assign := make([]int, len(chunks))
	for iter := 0; iter < iterations; iter++ {
		for i, v := range chunks {
			best, bestDist := 0, float32(math.MaxFloat32)
			for c, centroid := range centroids {
				d := l2(v, centroid)
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			assign[i] = best
		}

		sums := make([][]float32, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float32, dim)
		}
		for i, v := range chunks {
			c := assign[i]
			counts[c]++
			for d := 0; d < dim; d++ {
				sums[c][d] += v[d]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				centroids[c][d] = sums[c][d] / float32(counts[c])
			}
		}
	}
	return centroids
}
