package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// GoalService manages versioned nutrition goals.
type GoalService interface {
	// SetGoal validates targets and makes them the user's active goal.
	// The previous goal is superseded, not deleted.
	SetGoal(ctx context.Context, userID string, targets domain.NutrientVector) (*domain.Goal, error)

	// UpdateGoal merges partial over the active goal's targets and stores the
	// result as a new goal. Without an active goal it behaves like SetGoal.
	UpdateGoal(ctx context.Context, userID string, partial domain.NutrientVector) (*domain.Goal, error)

	// ActiveGoal returns the goal that was active at the given instant.
	// Returns domain.ErrNotFound when no goal existed at that time.
	ActiveGoal(ctx context.Context, userID string, at time.Time) (*domain.Goal, error)

	// History returns every goal the user has set, oldest first.
	History(ctx context.Context, userID string) ([]domain.Goal, error)
}
