package driven

import (
	"context"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// ListingPublisher is the downstream listing-creation boundary. Each
// Resolution's draft and filled aspects form its input contract; the
// relisting orchestration that consumes batch reports implements and
// calls it outside this module. No adapter ships here: creating
// inventory items and offers is outside this core.
type ListingPublisher interface {
	// Publish submits a resolved listing to the marketplace.
	// Returns the marketplace's listing identifier.
	Publish(ctx context.Context, draft domain.ListingDraft, aspects domain.FilledAspects) (string, error)
}
