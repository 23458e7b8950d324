package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/relist-labs/relist-cli/internal/adapters/driven/storage/memory"
	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/services"
)

// mockCorpusManager implements driving.CorpusManager for command tests.
type mockCorpusManager struct {
	info        domain.CorpusInfo
	statusErr   error
	ensureErr   error
	ensureCalls int
	lastForce   bool
}

func (m *mockCorpusManager) Ensure(_ context.Context, force bool) (domain.CorpusInfo, error) {
	m.ensureCalls++
	m.lastForce = force
	return m.info, m.ensureErr
}

func (m *mockCorpusManager) Status(_ context.Context) (domain.CorpusInfo, error) {
	return m.info, m.statusErr
}

// mockResolver implements driving.ListingResolver for command tests.
type mockResolver struct {
	resolution    *domain.Resolution
	err           error
	batchProducts []domain.ProductSignal
}

func (m *mockResolver) Resolve(_ context.Context, _ domain.ProductSignal) (*domain.Resolution, error) {
	return m.resolution, m.err
}

func (m *mockResolver) ResolveBatch(_ context.Context, products []domain.ProductSignal) domain.BatchReport {
	m.batchProducts = products
	report := domain.BatchReport{RunID: "test-run", StartedAt: time.Now()}
	for i, p := range products {
		report.Results = append(report.Results, domain.ProductResult{
			ID:         fmt.Sprintf("test-run-%d", i+1),
			Title:      p.Title,
			Resolution: m.resolution,
			Elapsed:    10 * time.Millisecond,
		})
	}
	report.FinishedAt = time.Now()
	return report
}

func testResolution() *domain.Resolution {
	return &domain.Resolution{
		Draft: domain.ListingDraft{
			CategoryID:     "257",
			CategoryName:   "Wiper Blades",
			OptimizedTitle: "Rain-X Latitude Water Repellency Wiper Blade 26 Inch",
			Brand:          "Rain-X",
			Confidence:     0.81,
		},
		Candidates: domain.CandidateSet{
			{
				CategoryID: "257",
				Name:       "Wiper Blades",
				Path:       []string{"Vehicle Parts & Accessories", "Car Parts", "Wiper Blades"},
				Similarity: 0.81,
			},
		},
		Aspects: domain.FilledAspects{
			"Blade Length": {"26 in"},
		},
	}
}

func testCorpusInfo() domain.CorpusInfo {
	return domain.CorpusInfo{
		ModelName:   "all-minilm",
		Dimensions:  384,
		TreeVersion: "119",
		Size:        18432,
		BuiltAt:     time.Now().Add(-24 * time.Hour),
	}
}

// setupTestServices swaps in mock services and returns a cleanup func.
func setupTestServices() func() {
	oldSettings := settingsService
	oldCorpus := corpusManager
	oldResolver := resolverService

	settingsService = services.NewSettingsService(memory.NewConfigStore())
	corpusManager = &mockCorpusManager{info: testCorpusInfo()}
	resolverService = &mockResolver{resolution: testResolution()}

	return func() {
		settingsService = oldSettings
		corpusManager = oldCorpus
		resolverService = oldResolver
	}
}
