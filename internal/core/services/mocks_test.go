package services

import (
	"context"
	"sync"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

// --- Mock implementations shared across the service tests ---

// mockEmbeddingService implements driven.EmbeddingService.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	model     string
	dims      int

	mu         sync.Mutex
	embedCalls int
	batchTexts [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.mu.Lock()
	m.batchTexts = append(m.batchTexts, texts)
	m.mu.Unlock()
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 384
}

func (m *mockEmbeddingService) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	addErr    error

	mu    sync.Mutex
	added map[string][]float32
}

func (m *mockVectorIndex) Add(_ context.Context, categoryID string, embedding []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.added == nil {
		m.added = make(map[string][]float32)
	}
	m.added[categoryID] = embedding
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.added) > 0 {
		return len(m.added)
	}
	return len(m.hits)
}

func (m *mockVectorIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = make(map[string][]float32)
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockTaxonomySource implements driven.TaxonomySource.
type mockTaxonomySource struct {
	tree        []domain.Category
	treeVersion string
	treeErr     error
	aspects     map[string]domain.AspectSchema
	aspectsErr  error

	mu          sync.Mutex
	aspectCalls int
}

func (m *mockTaxonomySource) FetchCategoryTree(_ context.Context) ([]domain.Category, string, error) {
	if m.treeErr != nil {
		return nil, "", m.treeErr
	}
	return m.tree, m.treeVersion, nil
}

func (m *mockTaxonomySource) FetchAspects(_ context.Context, categoryID string) (domain.AspectSchema, error) {
	m.mu.Lock()
	m.aspectCalls++
	m.mu.Unlock()
	if m.aspectsErr != nil {
		return domain.AspectSchema{}, m.aspectsErr
	}
	if schema, ok := m.aspects[categoryID]; ok {
		return schema, nil
	}
	return domain.AspectSchema{CategoryID: categoryID}, nil
}

// mockCatalogStore implements driven.CatalogStore in memory.
type mockCatalogStore struct {
	mu          sync.Mutex
	categories  map[string]domain.Category
	treeVersion string
	corpusInfo  *domain.CorpusInfo
	records     []domain.EmbeddingRecord
	saveErr     error
}

func (m *mockCatalogStore) ReplaceTree(_ context.Context, categories []domain.Category, treeVersion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	m.treeVersion = treeVersion
	return nil
}

func (m *mockCatalogStore) Tree(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCatalogStore) TreeVersion(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treeVersion, nil
}

func (m *mockCatalogStore) Category(_ context.Context, id string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, domain.ErrNotFound
}

func (m *mockCatalogStore) SaveCorpus(_ context.Context, info domain.CorpusInfo, records []domain.EmbeddingRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpusInfo = &info
	m.records = records
	return nil
}

func (m *mockCatalogStore) LoadCorpus(_ context.Context) (domain.CorpusInfo, []domain.EmbeddingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corpusInfo == nil {
		return domain.CorpusInfo{}, nil, domain.ErrNotFound
	}
	return *m.corpusInfo, m.records, nil
}

func (m *mockCatalogStore) CorpusInfo(_ context.Context) (domain.CorpusInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corpusInfo == nil {
		return domain.CorpusInfo{}, domain.ErrNotFound
	}
	return *m.corpusInfo, nil
}

func (m *mockCatalogStore) Close() error { return nil }

// mockLLMService implements driven.LLMService.
type mockLLMService struct {
	response    string
	generateErr error

	mu      sync.Mutex
	prompts []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

func (m *mockLLMService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
