package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// LogFoodRequest carries the fields of a new ledger entry.
type LogFoodRequest struct {
	UserID            string
	Nutrients         domain.NutrientVector
	MealLabel         string
	LoggedAt          time.Time // zero means now
	SourceDescription string
}

// CorrectionRequest replaces a ledger entry. Nil or zero fields inherit the
// corrected entry's value.
type CorrectionRequest struct {
	UserID            string
	EntryID           string
	Nutrients         domain.NutrientVector
	MealLabel         *string
	LoggedAt          time.Time
	SourceDescription *string
}

// IntakeService manages the append-only food ledger.
type IntakeService interface {
	// LogFood validates and appends an entry. It never requires a goal.
	LogFood(ctx context.Context, req LogFoodRequest) (*domain.FoodLogEntry, error)

	// QueryRange returns raw ledger entries with LoggedAt in [start, end),
	// including corrections and void markers, ordered by LoggedAt then
	// insertion order.
	QueryRange(ctx context.Context, userID string, start, end time.Time) ([]domain.FoodLogEntry, error)

	// Correct appends a replacement entry that supersedes req.EntryID.
	Correct(ctx context.Context, req CorrectionRequest) (*domain.FoodLogEntry, error)

	// Void appends a void marker that withdraws entryID.
	Void(ctx context.Context, userID, entryID, reason string) (*domain.FoodLogEntry, error)

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]domain.FoodLogEntry, error)
}
