package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// Ensure ProgressService implements the interface.
var _ driving.ProgressService = (*ProgressService)(nil)

// MaxHistoryDays caps the span of a progress history query.
const MaxHistoryDays = 93

// ProgressService aggregates the ledger against goals. It only reads.
type ProgressService struct {
	goals   driven.GoalStore
	logs    driven.FoodLogStore
	locks   *UserLocks
	storage storageGuard
}

// NewProgressService creates a new progress service. locks should be the
// registry shared with the goal and intake services.
func NewProgressService(goals driven.GoalStore, logs driven.FoodLogStore, locks *UserLocks) *ProgressService {
	if locks == nil {
		locks = NewUserLocks()
	}
	return &ProgressService{goals: goals, logs: logs, locks: locks}
}

// SetStorageTimeout bounds each store call.
func (s *ProgressService) SetStorageTimeout(d time.Duration) {
	s.storage.timeout = d
}

// ComputeProgress compares the day's intake with the goal that applied.
func (s *ProgressService) ComputeProgress(
	ctx context.Context, userID string, day domain.Date, loc *time.Location,
) (*domain.ProgressSnapshot, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateDay(day, loc); err != nil {
		return nil, err
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	window := day.Window(loc)
	goal, err := s.goalFor(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("progress for %s on %s: %w", userID, day, domain.ErrNoGoalSet)
	}

	summary, err := s.summarize(ctx, userID, day, loc)
	if err != nil {
		return nil, err
	}
	return Compare(*summary, goal), nil
}

// DailyIntake aggregates the day's intake without consulting goals.
func (s *ProgressService) DailyIntake(
	ctx context.Context, userID string, day domain.Date, loc *time.Location,
) (*domain.IntakeSummary, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateDay(day, loc); err != nil {
		return nil, err
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	return s.summarize(ctx, userID, day, loc)
}

// History returns one snapshot per day in [from, to]. The whole span is read
// under one read lock so the days are mutually consistent.
func (s *ProgressService) History(
	ctx context.Context, userID string, from, to domain.Date, loc *time.Location,
) ([]domain.ProgressSnapshot, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateDay(from, loc); err != nil {
		return nil, err
	}
	if to.IsZero() {
		return nil, domain.NewValidationError("to", "date is required")
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}
	if from.DaysUntil(to)+1 > MaxHistoryDays {
		return nil, domain.NewValidationError("to", fmt.Sprintf("span must not exceed %d days", MaxHistoryDays))
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	snapshots := make([]domain.ProgressSnapshot, 0, from.DaysUntil(to)+1)
	for day := from; !to.Before(day); day = day.AddDays(1) {
		goal, err := s.goalFor(ctx, userID, day.Window(loc))
		if err != nil {
			return nil, err
		}
		summary, err := s.summarize(ctx, userID, day, loc)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *Compare(*summary, goal))
	}
	return snapshots, nil
}

// goalFor resolves the goal for a day window: the goal active at the start
// of the window, else the first goal created inside it. Returns nil when
// neither exists.
func (s *ProgressService) goalFor(ctx context.Context, userID string, window domain.DayWindow) (*domain.Goal, error) {
	var goal *domain.Goal
	err := s.storage.call(ctx, "resolving goal", func(ctx context.Context) error {
		var err error
		goal, err = s.goals.ActiveAt(ctx, userID, window.Start)
		if errors.Is(err, domain.ErrNotFound) {
			// No goal was active at the window start: the first goal set during the day applies.
			goal, err = s.goals.FirstIn(ctx, userID, window.Start, window.End)
		}
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *ProgressService) summarize(
	ctx context.Context, userID string, day domain.Date, loc *time.Location,
) (*domain.IntakeSummary, error) {
	window := day.Window(loc)

	var entries []domain.FoodLogEntry
	var superseded map[string]string
	err := s.storage.call(ctx, "aggregating food log", func(ctx context.Context) error {
		var err error
		if entries, err = s.logs.Range(ctx, userID, window.Start, window.End); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		superseded, err = s.logs.Superseded(ctx, userID, domain.EntryIDs(entries))
		return err
	})
	if err != nil {
		return nil, err
	}

	summary := Summarize(domain.EffectiveEntries(entries, superseded))
	summary.UserID = userID
	summary.Day = day
	summary.Timezone = loc.String()
	summary.Window = window
	return &summary, nil
}

// Summarize sums effective entries in total and per meal label.
// The result does not depend on the order of entries.
func Summarize(entries []domain.FoodLogEntry) domain.IntakeSummary {
	all := make([]domain.NutrientVector, 0, len(entries))
	meals := make(map[string][]domain.NutrientVector)
	for i := range entries {
		all = append(all, entries[i].Nutrients)
		meals[entries[i].MealLabel] = append(meals[entries[i].MealLabel], entries[i].Nutrients)
	}

	byMeal := make(map[string]domain.NutrientVector, len(meals))
	for label, vectors := range meals {
		byMeal[label] = domain.SumNutrients(vectors...)
	}

	return domain.IntakeSummary{
		Consumed:   domain.SumNutrients(all...),
		ByMeal:     byMeal,
		EntryCount: len(entries),
	}
}

// Compare derives remaining amounts and percentages from a summary and a
// goal. With a nil goal the snapshot only carries intake figures.
func Compare(summary domain.IntakeSummary, goal *domain.Goal) *domain.ProgressSnapshot {
	snapshot := &domain.ProgressSnapshot{IntakeSummary: summary, Goal: goal}
	if goal == nil {
		return snapshot
	}

	snapshot.Remaining = make(domain.NutrientVector)
	snapshot.PercentOfGoal = make(map[string]float64)
	for _, n := range domain.UnionKeys(goal.Targets, summary.Consumed) {
		consumed := summary.Consumed.Get(n)
		target := goal.Targets.Get(n)
		snapshot.Remaining[n] = math.Max(0, target-consumed)
		if target > 0 {
			snapshot.PercentOfGoal[n] = consumed / target
		}
	}
	return snapshot
}

func validateDay(day domain.Date, loc *time.Location) error {
	if day.IsZero() {
		return domain.NewValidationError("date", "date is required")
	}
	if loc == nil {
		return domain.NewValidationError("timezone", "timezone required")
	}
	return nil
}
