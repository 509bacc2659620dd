package retrieval

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantLane is the external vector service lane, configured via
// QDRANT_URL/QDRANT_COLLECTION: a collection living outside the
// capsule, queried with the raw query text embedded on the way in.
// Grounded on the qdrant-go-client usage in the retrieved ragproxy
// example — same points-query shape, generalized behind
// ExternalVectorLane.
type QdrantLane struct {
	Client     *qdrant.Client
	Collection string
	Embedder   Embedder
	Lookup     FrameLookup
}

// NewQdrantLane dials host:port and returns a lane, or nil if url is
// empty (external vector search is optional and off by default).
func NewQdrantLane(host string, port int, collection string, embedder Embedder, lookup FrameLookup) (*QdrantLane, error) {
	if host == "" || collection == "" {
		return nil, nil
	}
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("retrieval: dial qdrant: %w", err)
	}
	return &QdrantLane{Client: client, Collection: collection, Embedder: embedder, Lookup: lookup}, nil
}

func (q *QdrantLane) Search(ctx context.Context, queryText string, limit int) ([]RankedItem, error) {
	vector, err := q.Embedder(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed for qdrant: %w", err)
	}

	limit64 := uint64(limit)
	points, err := q.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit64,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval: qdrant query: %w", err)
	}

	items := make([]RankedItem, 0, len(points))
	for i, p := range points {
		frameID := p.Id.GetNum()
		uri, title, snippet, ok := q.Lookup(frameID)
		if !ok {
			continue
		}
		items = append(items, RankedItem{
			URI:      uri,
			FrameID:  frameID,
			Title:    title,
			Snippet:  snippet,
			Rank:     i + 1,
			RawScore: float64(p.Score),
		})
	}
	return items, nil
}
