package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Retriever finds the nearest category candidates for a product by
// embedding its text and searching the corpus index. Read-only over the
// index and the catalog, so a single Retriever is safe to share across
// batch workers.
type Retriever struct {
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	catalog   driven.CatalogStore
	topK      int
}

// NewRetriever creates a retriever. topK values below 1 fall back to the
// default candidate set size.
func NewRetriever(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	catalog driven.CatalogStore,
	topK int,
) *Retriever {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	return &Retriever{
		embedding: embedding,
		index:     index,
		catalog:   catalog,
		topK:      topK,
	}
}

// Retrieve returns the top-K candidate categories for a product, ordered
// by descending similarity. The set is never silently empty: a missing
// corpus or an empty search result is an explicit error.
func (r *Retriever) Retrieve(ctx context.Context, product domain.ProductSignal) (domain.CandidateSet, error) {
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("validate product: %w", err)
	}
	if r.index.Size() == 0 {
		return nil, domain.ErrRetrieverNotInitialized
	}

	query := product.QueryText()
	logger.Debug("Retrieval query: %q", query)

	vector, err := r.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, NormalizeVector(vector), r.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return nil, domain.ErrEmptyCandidateSet
	}

	candidates := make(domain.CandidateSet, 0, len(hits))
	for _, hit := range hits {
		category, err := r.catalog.Category(ctx, hit.CategoryID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index and catalog drifted apart. Skip rather than
				// surface a candidate nothing can describe.
				logger.Warn("Indexed category %s missing from catalog", hit.CategoryID)
				continue
			}
			return nil, fmt.Errorf("lookup category %s: %w", hit.CategoryID, err)
		}
		candidates = append(candidates, domain.Candidate{
			CategoryID: category.ID,
			Name:       category.Name,
			Path:       category.Path,
			Similarity: hit.Similarity,
		})
	}

	if candidates.IsEmpty() {
		return nil, domain.ErrEmptyCandidateSet
	}

	for i, c := range candidates {
		logger.Debug("Candidate %d: %s (%.4f) %s", i+1, c.Name, c.Similarity, c.PathString())
	}

	return candidates, nil
}
