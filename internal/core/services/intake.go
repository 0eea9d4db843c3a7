package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
	"github.com/custodia-labs/nutrisense/internal/logger"
)

// Ensure IntakeService implements the interface.
var _ driving.IntakeService = (*IntakeService)(nil)

const (
	// DefaultRecentLimit is used when Recent is called without a limit.
	DefaultRecentLimit = 50
	// MaxRecentLimit caps Recent.
	MaxRecentLimit = 500
)

// IntakeService manages the append-only food ledger.
type IntakeService struct {
	logs    driven.FoodLogStore
	locks   *UserLocks
	clock   driven.Clock
	storage storageGuard
}

// NewIntakeService creates a new intake service.
func NewIntakeService(logs driven.FoodLogStore, locks *UserLocks, clock driven.Clock) *IntakeService {
	if locks == nil {
		locks = NewUserLocks()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &IntakeService{logs: logs, locks: locks, clock: clock}
}

// SetStorageTimeout bounds each store call.
func (s *IntakeService) SetStorageTimeout(d time.Duration) {
	s.storage.timeout = d
}

// LogFood validates and appends a meal entry.
func (s *IntakeService) LogFood(ctx context.Context, req driving.LogFoodRequest) (*domain.FoodLogEntry, error) {
	userID, err := requireUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	nutrients, err := validateNutrients(req.Nutrients)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := domain.FoodLogEntry{
		ID:                uuid.New().String(),
		UserID:            userID,
		LoggedAt:          req.LoggedAt,
		RecordedAt:        now,
		MealLabel:         domain.NormalizeMealLabel(req.MealLabel),
		Nutrients:         nutrients,
		SourceDescription: strings.TrimSpace(req.SourceDescription),
		Kind:              domain.EntryMeal,
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = now
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.append(ctx, entry)
}

// QueryRange returns raw ledger entries with LoggedAt in [start, end).
func (s *IntakeService) QueryRange(ctx context.Context, userID string, start, end time.Time) ([]domain.FoodLogEntry, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	var entries []domain.FoodLogEntry
	err = s.storage.call(ctx, "querying food log", func(ctx context.Context) error {
		var err error
		entries, err = s.logs.Range(ctx, userID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Correct appends a replacement entry that supersedes req.EntryID.
func (s *IntakeService) Correct(ctx context.Context, req driving.CorrectionRequest) (*domain.FoodLogEntry, error) {
	userID, err := requireUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	var nutrients domain.NutrientVector
	if req.Nutrients != nil {
		if nutrients, err = validateNutrients(req.Nutrients); err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	original, err := s.supersedable(ctx, userID, req.EntryID)
	if err != nil {
		return nil, err
	}

	replacement := domain.FoodLogEntry{
		ID:                uuid.New().String(),
		UserID:            userID,
		LoggedAt:          original.LoggedAt,
		RecordedAt:        s.clock.Now(),
		MealLabel:         original.MealLabel,
		Nutrients:         original.Nutrients.Clone(),
		SourceDescription: original.SourceDescription,
		Kind:              domain.EntryMeal,
		Supersedes:        original.ID,
	}
	if nutrients != nil {
		replacement.Nutrients = nutrients
	}
	if req.MealLabel != nil {
		replacement.MealLabel = domain.NormalizeMealLabel(*req.MealLabel)
	}
	if !req.LoggedAt.IsZero() {
		replacement.LoggedAt = req.LoggedAt
	}
	if req.SourceDescription != nil {
		replacement.SourceDescription = strings.TrimSpace(*req.SourceDescription)
	}

	return s.append(ctx, replacement)
}

// Void appends a void marker that withdraws entryID from aggregation.
func (s *IntakeService) Void(ctx context.Context, userID, entryID, reason string) (*domain.FoodLogEntry, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	original, err := s.supersedable(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	marker := domain.FoodLogEntry{
		ID:                uuid.New().String(),
		UserID:            userID,
		LoggedAt:          original.LoggedAt,
		RecordedAt:        s.clock.Now(),
		MealLabel:         original.MealLabel,
		Nutrients:         domain.NutrientVector{},
		SourceDescription: strings.TrimSpace(reason),
		Kind:              domain.EntryVoid,
		Supersedes:        original.ID,
	}
	return s.append(ctx, marker)
}

// Recent returns up to limit entries, newest first.
func (s *IntakeService) Recent(ctx context.Context, userID string, limit int) ([]domain.FoodLogEntry, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	var entries []domain.FoodLogEntry
	err = s.storage.call(ctx, "listing recent food log", func(ctx context.Context) error {
		var err error
		entries, err = s.logs.Recent(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// supersedable loads entryID and checks that it may still be corrected.
// Must be called with the user's write lock held.
func (s *IntakeService) supersedable(ctx context.Context, userID, entryID string) (*domain.FoodLogEntry, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return nil, domain.NewValidationError("entry_id", "entry id is required")
	}

	var original *domain.FoodLogEntry
	var superseded map[string]string
	err := s.storage.call(ctx, "loading food log entry", func(ctx context.Context) error {
		var err error
		if original, err = s.logs.Get(ctx, userID, entryID); err != nil {
			return err
		}
		superseded, err = s.logs.Superseded(ctx, userID, []string{entryID})
		return err
	})
	if err != nil {
		return nil, err
	}

	if original.IsVoid() {
		return nil, fmt.Errorf("entry %s is a void marker: %w", entryID, domain.ErrConflict)
	}
	if by, ok := superseded[entryID]; ok {
		return nil, fmt.Errorf("entry %s already superseded by %s: %w", entryID, by, domain.ErrConflict)
	}
	return original, nil
}

func (s *IntakeService) append(ctx context.Context, entry domain.FoodLogEntry) (*domain.FoodLogEntry, error) {
	if err := domain.ValidateInstant("logged_at", entry.LoggedAt); err != nil {
		return nil, err
	}
	if err := domain.ValidateInstant("recorded_at", entry.RecordedAt); err != nil {
		return nil, err
	}

	var stored *domain.FoodLogEntry
	err := s.storage.call(ctx, "appending food log entry", func(ctx context.Context) error {
		var err error
		stored, err = s.logs.Append(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("food log %s entry %s appended for user %s", stored.Kind, stored.ID, stored.UserID)
	return stored, nil
}

func validateNutrients(nutrients domain.NutrientVector) (domain.NutrientVector, error) {
	return nutrients.Validate("nutrients")
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.NewValidationError("range", "start and end are required")
	}
	if !end.After(start) {
		return domain.NewValidationError("range", "end must be after start")
	}
	return nil
}
