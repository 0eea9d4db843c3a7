package driven

import (
	"context"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// ProfileStore persists user profiles.
type ProfileStore interface {
	// Save stores or replaces a profile.
	Save(ctx context.Context, profile domain.UserProfile) error

	// Get retrieves a profile by user ID.
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}
