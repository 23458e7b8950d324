package driven

import (
	"context"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// TaxonomySource fetches category data from the marketplace taxonomy API.
// Both operations are read-only, may fail transiently (network), and are
// called at low frequency: the tree roughly quarterly, aspect schemas
// once per category per batch run (memoized by the requirements cache).
type TaxonomySource interface {
	// FetchCategoryTree downloads the full category tree.
	// Returns the categories and the marketplace's tree version string.
	FetchCategoryTree(ctx context.Context) ([]domain.Category, string, error)

	// FetchAspects fetches the aspect requirement schema for a category.
	// A category with no specific requirements yields an empty schema,
	// not an error.
	FetchAspects(ctx context.Context, categoryID string) (domain.AspectSchema, error)
}
