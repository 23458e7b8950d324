package driven

import "context"

// VectorIndex provides similarity search over category embeddings.
// A flat inner-product index is sufficient at tens-of-thousands-of-
// categories scale; vectors are L2-normalized so inner product equals
// cosine similarity.
//
// Note: This is separate from EmbeddingService which generates vectors.
// EmbeddingService generates vectors; VectorIndex stores and searches them.
type VectorIndex interface {
	// Add inserts a vector for the given category ID.
	Add(ctx context.Context, categoryID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	// Results are ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Size returns the number of indexed vectors.
	Size() int

	// Reset removes all vectors, preparing the index for a rebuild.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// CategoryID is the matched category.
	CategoryID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
