package present

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

// LocationResolver picks the timezone for a day window: the requested name,
// then the user's profile, then Default. It never assumes UTC.
type LocationResolver struct {
	Profiles driving.ProfileService
	Default  *time.Location
}

// Resolve returns the location for userID. A missing or timezone-less
// profile falls through to Default; other profile errors are returned.
func (r *LocationResolver) Resolve(ctx context.Context, userID, name string) (*time.Location, error) {
	if name = strings.TrimSpace(name); name != "" {
		return domain.LoadLocation(name)
	}

	if r != nil && r.Profiles != nil {
		loc, err := r.Profiles.Location(ctx, userID)
		switch {
		case err == nil:
			return loc, nil
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		default:
			return nil, err
		}
	}

	if r != nil && r.Default != nil {
		return r.Default, nil
	}
	return nil, domain.NewValidationError("timezone", "timezone required")
}
