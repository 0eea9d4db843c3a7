package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// FoodLogStore is the append-only intake ledger.
type FoodLogStore interface {
	// Append stores a new entry and returns it with Sequence assigned.
	Append(ctx context.Context, entry domain.FoodLogEntry) (*domain.FoodLogEntry, error)

	// Get retrieves an entry by ID for a user.
	Get(ctx context.Context, userID, id string) (*domain.FoodLogEntry, error)

	// Range returns entries with LoggedAt in [start, end), ordered by
	// LoggedAt then Sequence.
	Range(ctx context.Context, userID string, start, end time.Time) ([]domain.FoodLogEntry, error)

	// Recent returns up to limit entries, newest LoggedAt first.
	Recent(ctx context.Context, userID string, limit int) ([]domain.FoodLogEntry, error)

	// Superseded maps each of ids that has been superseded to the ID of the
	// entry superseding it. IDs not superseded are absent.
	Superseded(ctx context.Context, userID string, ids []string) (map[string]string, error)
}
