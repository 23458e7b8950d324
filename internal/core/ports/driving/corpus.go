package driving

import (
	"context"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// CorpusManager builds and inspects the category embedding corpus.
type CorpusManager interface {
	// Ensure loads the persisted corpus if present and valid, building
	// it from the taxonomy otherwise. With force, the corpus is always
	// rebuilt. Returns the corpus metadata.
	Ensure(ctx context.Context, force bool) (domain.CorpusInfo, error)

	// Status returns the persisted corpus metadata without loading
	// vectors. Returns domain.ErrNotFound when no corpus exists.
	Status(ctx context.Context) (domain.CorpusInfo, error)
}
