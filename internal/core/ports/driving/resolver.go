package driving

import (
	"context"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// ListingResolver runs the category resolution pipeline.
type ListingResolver interface {
	// Resolve runs the full pipeline for one product: retrieval,
	// disambiguation and aspect filling. Returns a complete Resolution
	// or an error - never a partial result.
	Resolve(ctx context.Context, product domain.ProductSignal) (*domain.Resolution, error)

	// ResolveBatch processes many products with a fixed worker pool and
	// a per-product timeout. A slow or failed product never stalls the
	// batch; its entry in the report carries the failure reason.
	ResolveBatch(ctx context.Context, products []domain.ProductSignal) domain.BatchReport
}
