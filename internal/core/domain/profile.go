package domain

import (
	"math"
	"strings"
	"time"
)

// Activity levels accepted in a profile.
var ActivityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}

// UserProfile holds personal details used to personalise responses.
// Unlike goals and ledger entries, a profile is mutable.
type UserProfile struct {
	// UserID identifies the user.
	UserID string

	// Name is how the assistant addresses the user.
	Name string

	// WeightKg is body weight in kilograms. Zero means unknown.
	WeightKg float64

	// HeightCm is height in centimetres. Zero means unknown.
	HeightCm float64

	// Age in years. Zero means unknown.
	Age int

	// Sex as given by the user (free text).
	Sex string

	// ActivityLevel is one of ActivityLevels, or empty.
	ActivityLevel string

	// DietaryPreferences such as "vegetarian".
	DietaryPreferences string

	// FoodAllergies lists allergies or intolerances.
	FoodAllergies string

	// HealthConditions lists conditions or limitations.
	HealthConditions string

	// Timezone is an IANA zone name used when a request gives none.
	Timezone string

	// UpdatedAt is when the profile was last written.
	UpdatedAt time.Time
}

// Validate checks ranges and the timezone name.
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return NewValidationError("user_id", "must not be empty")
	}
	for field, v := range map[string]float64{"weight_kg": p.WeightKg, "height_cm": p.HeightCm} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return NewValidationError(field, "must be a non-negative number")
		}
	}
	if p.Age < 0 || p.Age > 150 {
		return NewValidationError("age", "must be between 0 and 150")
	}
	if p.ActivityLevel != "" && !isActivityLevel(p.ActivityLevel) {
		return NewValidationError("activity_level", "must be one of "+strings.Join(ActivityLevels, ", "))
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return NewValidationError("timezone", "unknown timezone "+p.Timezone)
		}
	}
	return nil
}

// Location returns the profile's timezone, or nil when none is set.
func (p *UserProfile) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

func isActivityLevel(level string) bool {
	for _, l := range ActivityLevels {
		if l == level {
			return true
		}
	}
	return false
}

// LoadLocation resolves an IANA timezone name for a day window.
// An empty name is rejected: day boundaries are never assumed to be UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("timezone", "timezone required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, NewValidationError("timezone", "unknown timezone "+name)
	}
	return loc, nil
}
