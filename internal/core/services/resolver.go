package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driving"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driving.ListingResolver = (*Resolver)(nil)

// Resolver drives the full pipeline for single products and batches:
// retrieval, disambiguation, aspect schema lookup, aspect fill. The
// retriever, disambiguator and filler are shared read-only across batch
// workers; the requirements cache is the only shared mutable state.
type Resolver struct {
	retriever     *Retriever
	disambiguator *Disambiguator
	filler        *AspectFiller
	requirements  *RequirementsCache
	settings      domain.PipelineSettings
}

// NewResolver creates a resolver over the pipeline stages.
func NewResolver(
	retriever *Retriever,
	disambiguator *Disambiguator,
	filler *AspectFiller,
	requirements *RequirementsCache,
	settings domain.PipelineSettings,
) *Resolver {
	if settings.Workers < 1 {
		settings.Workers = domain.DefaultWorkers
	}
	if settings.ProductTimeout <= 0 {
		settings.ProductTimeout = domain.DefaultProductTimeout
	}
	return &Resolver{
		retriever:     retriever,
		disambiguator: disambiguator,
		filler:        filler,
		requirements:  requirements,
		settings:      settings,
	}
}

// Resolve runs the pipeline for one product.
func (r *Resolver) Resolve(ctx context.Context, product domain.ProductSignal) (*domain.Resolution, error) {
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("validate product: %w", err)
	}

	candidates, err := r.retriever.Retrieve(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	draft, err := r.disambiguator.Decide(ctx, product, candidates)
	if err != nil {
		return nil, fmt.Errorf("disambiguate: %w", err)
	}
	logger.Info("Selected category %s (%s) confidence=%.4f degraded=%t",
		draft.CategoryID, draft.CategoryName, draft.Confidence, draft.Degraded)

	// A failed schema fetch must not sink an otherwise resolved product;
	// the listing just ships without filled aspects.
	schema, err := r.requirements.Get(ctx, draft.CategoryID)
	if err != nil {
		logger.Warn("Aspect schema fetch failed for %s: %v", draft.CategoryID, err)
		schema = domain.AspectSchema{CategoryID: draft.CategoryID}
	}

	aspects, err := r.filler.Fill(ctx, product, schema)
	if err != nil {
		return nil, fmt.Errorf("fill aspects: %w", err)
	}

	missing := aspects.MissingRequired(schema)
	if len(missing) > 0 {
		logger.Warn("Required aspects missing for %s: %v", draft.CategoryID, missing)
	}

	return &domain.Resolution{
		Draft:           draft,
		Candidates:      candidates,
		Aspects:         aspects,
		MissingRequired: missing,
	}, nil
}

// ResolveBatch processes products with a fixed worker pool. Results keep
// input order; a failed or slow product is reported in place and never
// stalls its siblings.
func (r *Resolver) ResolveBatch(ctx context.Context, products []domain.ProductSignal) domain.BatchReport {
	report := domain.BatchReport{
		RunID:     uuid.NewString(),
		Results:   make([]domain.ProductResult, len(products)),
		StartedAt: time.Now(),
	}

	workers := r.settings.Workers
	if workers > len(products) {
		workers = len(products)
	}

	logger.Section("Batch Run")
	logger.Info("Run %s: %d products, %d workers, %s per-product timeout",
		report.RunID, len(products), workers, r.settings.ProductTimeout)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Results[i] = r.resolveOne(ctx, report.RunID, i, products[i])
			}
		}()
	}

dispatch:
	for i := range products {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark everything not yet handed out as cancelled.
			for j := i; j < len(products); j++ {
				report.Results[j] = domain.ProductResult{
					ID:    fmt.Sprintf("%s-%d", report.RunID, j+1),
					Title: products[j].Title,
					Err:   ctx.Err().Error(),
				}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	report.FinishedAt = time.Now()
	logger.Info("Run %s finished: %d succeeded, %d failed in %s",
		report.RunID, report.Succeeded(), report.Failed(), report.FinishedAt.Sub(report.StartedAt))
	return report
}

// resolveOne runs one product under the per-product timeout.
func (r *Resolver) resolveOne(
	ctx context.Context, runID string, index int, product domain.ProductSignal,
) domain.ProductResult {
	result := domain.ProductResult{
		ID:    fmt.Sprintf("%s-%d", runID, index+1),
		Title: product.Title,
	}

	productCtx, cancel := context.WithTimeout(ctx, r.settings.ProductTimeout)
	defer cancel()

	start := time.Now()
	resolution, err := r.Resolve(productCtx, product)
	result.Elapsed = time.Since(start)

	if err != nil {
		logger.Warn("Product %d failed after %s: %v", index+1, result.Elapsed, err)
		result.Err = err.Error()
		return result
	}

	result.Resolution = resolution
	return result
}
