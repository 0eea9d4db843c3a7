package services

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// Ensure ProfileService implements the interface.
var _ driving.ProfileService = (*ProfileService)(nil)

// ProfileService manages user profiles.
type ProfileService struct {
	profiles driven.ProfileStore
	locks    *UserLocks
	clock    driven.Clock
	storage  storageGuard
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles driven.ProfileStore, locks *UserLocks, clock driven.Clock) *ProfileService {
	if locks == nil {
		locks = NewUserLocks()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProfileService{profiles: profiles, locks: locks, clock: clock}
}

// SetStorageTimeout bounds each store call.
func (s *ProfileService) SetStorageTimeout(d time.Duration) {
	s.storage.timeout = d
}

// Get retrieves a profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.RLock(userID)
	defer unlock()

	var profile *domain.UserProfile
	err = s.storage.call(ctx, "loading profile", func(ctx context.Context) error {
		var err error
		profile, err = s.profiles.Get(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Update validates and stores a profile.
func (s *ProfileService) Update(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	profile.UserID = strings.TrimSpace(profile.UserID)
	profile.Timezone = strings.TrimSpace(profile.Timezone)
	profile.ActivityLevel = strings.ToLower(strings.TrimSpace(profile.ActivityLevel))
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.clock.Now()
	if err := domain.ValidateInstant("updated_at", profile.UpdatedAt); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(profile.UserID)
	defer unlock()

	err := s.storage.call(ctx, "saving profile", func(ctx context.Context) error {
		return s.profiles.Save(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Location returns the user's default timezone.
func (s *ProfileService) Location(ctx context.Context, userID string) (*time.Location, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.LoadLocation(profile.Timezone)
}
