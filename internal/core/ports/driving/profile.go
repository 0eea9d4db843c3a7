package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// ProfileService manages user profiles.
type ProfileService interface {
	// Get retrieves a profile.
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)

	// Update validates and stores a profile, replacing any existing one.
	Update(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error)

	// Location returns the user's default timezone for day windows.
	// Returns a validation error when the profile has none.
	Location(ctx context.Context, userID string) (*time.Location, error)
}
