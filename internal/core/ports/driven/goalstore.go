package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// GoalStore persists goals. Goals are never updated or deleted; a new goal
// supersedes the previous one by being appended after it.
type GoalStore interface {
	// Append stores a new goal.
	Append(ctx context.Context, goal domain.Goal) error

	// ActiveAt returns the latest goal created at or before at, with Active
	// set. Ties on CreatedAt resolve to the most recently appended goal.
	// Returns domain.ErrNotFound when there is none.
	ActiveAt(ctx context.Context, userID string, at time.Time) (*domain.Goal, error)

	// FirstIn returns the earliest goal created in [start, end).
	// Returns domain.ErrNotFound when there is none.
	FirstIn(ctx context.Context, userID string, start, end time.Time) (*domain.Goal, error)

	// List returns all goals for a user, oldest first.
	List(ctx context.Context, userID string) ([]domain.Goal, error)
}
