package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

// profileStore implements driven.ProfileStore.
type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

// Save creates or replaces a profile.
func (s *profileStore) Save(ctx context.Context, p domain.UserProfile) error {
	updatedAt, err := storedNanos("updated_at", p.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, name, weight_kg, height_cm, age, sex, activity_level,
			dietary_preferences, food_allergies, health_conditions, timezone, updated_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			age = excluded.age,
			sex = excluded.sex,
			activity_level = excluded.activity_level,
			dietary_preferences = excluded.dietary_preferences,
			food_allergies = excluded.food_allergies,
			health_conditions = excluded.health_conditions,
			timezone = excluded.timezone,
			updated_at_ns = excluded.updated_at_ns
	`, p.UserID, p.Name, p.WeightKg, p.HeightCm, p.Age, p.Sex, p.ActivityLevel,
		p.DietaryPreferences, p.FoodAllergies, p.HealthConditions, p.Timezone, updatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by user ID.
func (s *profileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		updatedNs int64
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT user_id, name, weight_kg, height_cm, age, sex, activity_level,
			dietary_preferences, food_allergies, health_conditions, timezone, updated_at_ns
		FROM profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.Name, &p.WeightKg, &p.HeightCm, &p.Age, &p.Sex, &p.ActivityLevel,
		&p.DietaryPreferences, &p.FoodAllergies, &p.HealthConditions, &p.Timezone, &updatedNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	p.UpdatedAt = fromNanos(updatedNs)
	return &p, nil
}
