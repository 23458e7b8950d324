// Package flat provides an in-memory exhaustive inner-product vector index.
//
// At marketplace-taxonomy scale (tens of thousands of vectors) a brute
// force scan answers a query in single-digit milliseconds, so there is
// no approximate index and no recall tradeoff. Vectors are expected to
// be L2-normalized, making inner product equal cosine similarity.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat inner-product similarity index.
// Safe for concurrent use: Search takes a read lock, Add and Reset a
// write lock.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    [][]float32
	byID       map[string]int
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("flat: dimensions must be positive, got %d", dimensions)
	}
	return &Index{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Add inserts a vector for the given category ID. Re-adding an id
// replaces its vector.
func (idx *Index) Add(_ context.Context, categoryID string, embedding []float32) error {
	if len(embedding) != idx.dimensions {
		return fmt.Errorf("flat: expected %d dimensions, got %d", idx.dimensions, len(embedding))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if pos, ok := idx.byID[categoryID]; ok {
		idx.vectors[pos] = embedding
		return nil
	}

	idx.byID[categoryID] = len(idx.ids)
	idx.ids = append(idx.ids, categoryID)
	idx.vectors = append(idx.vectors, embedding)
	return nil
}

// Search scans every vector and returns the k highest inner products in
// descending order.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("flat: expected %d dimensions, got %d", idx.dimensions, len(query))
	}
	if k < 1 {
		return nil, fmt.Errorf("flat: k must be positive, got %d", k)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(idx.ids))
	for i, vector := range idx.vectors {
		hits = append(hits, driven.VectorHit{
			CategoryID: idx.ids[i],
			Similarity: dot(query, vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of indexed vectors.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Reset removes all vectors, preparing the index for a rebuild.
func (idx *Index) Reset(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ids = nil
	idx.vectors = nil
	idx.byID = make(map[string]int)
	return nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// dot computes the inner product in float64 to limit accumulation error.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
