package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// ProgressService aggregates the ledger against goals. It never writes.
type ProgressService interface {
	// ComputeProgress compares the day's intake in loc with the goal active at
	// the start of the day. Returns domain.ErrNoGoalSet when no goal applies.
	ComputeProgress(ctx context.Context, userID string, day domain.Date, loc *time.Location) (*domain.ProgressSnapshot, error)

	// DailyIntake aggregates the day's intake without consulting goals.
	DailyIntake(ctx context.Context, userID string, day domain.Date, loc *time.Location) (*domain.IntakeSummary, error)

	// History returns one snapshot per day in [from, to]. Days without a goal
	// have a nil Goal and only intake figures.
	History(ctx context.Context, userID string, from, to domain.Date, loc *time.Location) ([]domain.ProgressSnapshot, error)
}
