package driven

import (
	"context"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// CatalogStore persists the category tree and the built embedding corpus.
// Implementations handle durability (e.g. SQLite); the store is the
// explicit lifecycle object injected into the corpus builder, replacing
// any process-wide singleton cache.
type CatalogStore interface {
	// ReplaceTree atomically replaces the cached category tree.
	ReplaceTree(ctx context.Context, categories []domain.Category, treeVersion string) error

	// Tree returns all cached categories. Empty slice when no tree has
	// been fetched yet.
	Tree(ctx context.Context) ([]domain.Category, error)

	// TreeVersion returns the cached tree's version string, or empty.
	TreeVersion(ctx context.Context) (string, error)

	// Category looks up one category by id.
	// Returns domain.ErrNotFound when absent.
	Category(ctx context.Context, id string) (domain.Category, error)

	// SaveCorpus atomically replaces the persisted corpus: the embedding
	// records and the metadata stamp describing them.
	SaveCorpus(ctx context.Context, info domain.CorpusInfo, records []domain.EmbeddingRecord) error

	// LoadCorpus returns the persisted corpus.
	// Returns domain.ErrNotFound when no corpus has been built.
	LoadCorpus(ctx context.Context) (domain.CorpusInfo, []domain.EmbeddingRecord, error)

	// CorpusInfo returns the persisted corpus metadata without loading
	// the vectors. Returns domain.ErrNotFound when no corpus exists.
	CorpusInfo(ctx context.Context) (domain.CorpusInfo, error)

	// Close releases resources.
	Close() error
}
