package memory

import (
	"context"
	"sync"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
// Nothing survives the process; it exists for tests and for runs that
// deliberately skip persistence.
type CatalogStore struct {
	mu          sync.RWMutex
	categories  map[string]domain.Category
	order       []string
	treeVersion string
	corpusInfo  *domain.CorpusInfo
	records     []domain.EmbeddingRecord
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		categories: make(map[string]domain.Category),
	}
}

// ReplaceTree atomically replaces the cached category tree.
func (s *CatalogStore) ReplaceTree(_ context.Context, categories []domain.Category, treeVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make(map[string]domain.Category, len(categories))
	s.order = make([]string, 0, len(categories))
	for _, c := range categories {
		s.categories[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	s.treeVersion = treeVersion
	return nil
}

// Tree returns all cached categories in insertion order.
func (s *CatalogStore) Tree(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.categories[id])
	}
	return out, nil
}

// TreeVersion returns the cached tree's version string, or empty.
func (s *CatalogStore) TreeVersion(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treeVersion, nil
}

// Category looks up one category by id.
func (s *CatalogStore) Category(_ context.Context, id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, domain.ErrNotFound
}

// SaveCorpus atomically replaces the persisted corpus.
func (s *CatalogStore) SaveCorpus(_ context.Context, info domain.CorpusInfo, records []domain.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corpusInfo = &info
	s.records = append([]domain.EmbeddingRecord(nil), records...)
	return nil
}

// LoadCorpus returns the persisted corpus.
func (s *CatalogStore) LoadCorpus(_ context.Context) (domain.CorpusInfo, []domain.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.corpusInfo == nil {
		return domain.CorpusInfo{}, nil, domain.ErrNotFound
	}
	return *s.corpusInfo, append([]domain.EmbeddingRecord(nil), s.records...), nil
}

// CorpusInfo returns the persisted corpus metadata without the vectors.
func (s *CatalogStore) CorpusInfo(_ context.Context) (domain.CorpusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.corpusInfo == nil {
		return domain.CorpusInfo{}, domain.ErrNotFound
	}
	return *s.corpusInfo, nil
}

// Close releases resources.
func (s *CatalogStore) Close() error {
	return nil
}
