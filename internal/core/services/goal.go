package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
	"github.com/custodia-labs/nutrisense/internal/logger"
)

// Ensure GoalService implements the interface.
var _ driving.GoalService = (*GoalService)(nil)

// GoalService manages versioned nutrition goals.
type GoalService struct {
	goals   driven.GoalStore
	locks   *UserLocks
	clock   driven.Clock
	storage storageGuard
}

// NewGoalService creates a new goal service. A nil locks or clock is replaced
// with a private registry or the system clock.
func NewGoalService(goals driven.GoalStore, locks *UserLocks, clock driven.Clock) *GoalService {
	if locks == nil {
		locks = NewUserLocks()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &GoalService{goals: goals, locks: locks, clock: clock}
}

// SetStorageTimeout bounds each store call.
func (s *GoalService) SetStorageTimeout(d time.Duration) {
	s.storage.timeout = d
}

// SetGoal validates targets and appends them as the user's new active goal.
func (s *GoalService) SetGoal(ctx context.Context, userID string, targets domain.NutrientVector) (*domain.Goal, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	validated, err := validateTargets(targets)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.appendGoal(ctx, userID, validated)
}

// UpdateGoal merges partial over the active goal's targets and appends the
// result as a new goal.
func (s *GoalService) UpdateGoal(ctx context.Context, userID string, partial domain.NutrientVector) (*domain.Goal, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	validated, err := validateTargets(partial)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var current *domain.Goal
	err = s.storage.call(ctx, "loading active goal", func(ctx context.Context) error {
		var err error
		current, err = s.goals.ActiveAt(ctx, userID, s.clock.Now())
		return err
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		validated = current.Targets.Merge(validated)
	}

	return s.appendGoal(ctx, userID, validated)
}

// ActiveGoal returns the goal that was active at the given instant.
func (s *GoalService) ActiveGoal(ctx context.Context, userID string, at time.Time) (*domain.Goal, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.clock.Now()
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	var goal *domain.Goal
	err = s.storage.call(ctx, "loading active goal", func(ctx context.Context) error {
		var err error
		goal, err = s.goals.ActiveAt(ctx, userID, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// History returns all goals for a user, oldest first.
func (s *GoalService) History(ctx context.Context, userID string) ([]domain.Goal, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	var goals []domain.Goal
	err = s.storage.call(ctx, "listing goals", func(ctx context.Context) error {
		var err error
		goals, err = s.goals.List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// appendGoal must be called with the user's write lock held.
func (s *GoalService) appendGoal(ctx context.Context, userID string, targets domain.NutrientVector) (*domain.Goal, error) {
	goal := domain.Goal{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: s.clock.Now(),
		Targets:   targets,
		Active:    true,
	}
	if err := domain.ValidateInstant("created_at", goal.CreatedAt); err != nil {
		return nil, err
	}
	err := s.storage.call(ctx, "saving goal", func(ctx context.Context) error {
		return s.goals.Append(ctx, goal)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("goal %s set for user %s (%d targets)", goal.ID, userID, len(targets))
	return &goal, nil
}

func validateTargets(targets domain.NutrientVector) (domain.NutrientVector, error) {
	return targets.Validate("targets")
}

func requireUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.NewValidationError("user_id", "user id is required")
	}
	return userID, nil
}
