package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

func TestGoalService_SetGoal(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()

	goal, err := env.goal.SetGoal(ctx, "u1", domain.NutrientVector{"Calories": 2000, "protein_g": 100})

	require.NoError(t, err)
	assert.NotEmpty(t, goal.ID)
	assert.True(t, goal.Active)
	assert.Equal(t, env.clock.now, goal.CreatedAt)
	assert.Equal(t, domain.NutrientVector{"Calories": 2000, "protein_g": 100}, goal.Targets)
}

func TestGoalService_SetGoal_Validation(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		targets domain.NutrientVector
	}{
		{"negative target", "u1", domain.NutrientVector{domain.NutrientProtein: -5}},
		{"blank nutrient name", "u1", domain.NutrientVector{"  ": 10}},
		{"blank user", " ", domain.NutrientVector{domain.NutrientCalories: 2000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.goal.SetGoal(ctx, tt.userID, tt.targets)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	history, err := env.goal.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history, "rejected goals are not stored")
}

func TestGoalService_SetGoal_RoundTripsTargets(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()
	targets := domain.NutrientVector{"Protein": 100, "Vitamin C mg": 90, "calories": 2000}

	_, err := env.goal.SetGoal(ctx, "u1", targets)
	require.NoError(t, err)

	active, err := env.goal.ActiveGoal(ctx, "u1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, targets, active.Targets)
}

func TestGoalService_SetGoal_EmptyTargets(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()

	goal, err := env.goal.SetGoal(ctx, "u1", domain.NutrientVector{})

	require.NoError(t, err)
	assert.Empty(t, goal.Targets)
	assert.True(t, goal.Active)
}

func TestGoalService_SetGoal_ClockOutsideStorableRange(t *testing.T) {
	env := newTestEnv(utc(2300, time.January, 1, 9, 0, 0))

	_, err := env.goal.SetGoal(context.Background(), "u1", domain.NutrientVector{domain.NutrientCalories: 2000})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGoalService_SetGoal_SupersedesPrevious(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()

	first, err := env.goal.SetGoal(ctx, "u1", domain.NutrientVector{domain.NutrientCalories: 2000})
	require.NoError(t, err)

	env.clock.Set(utc(2024, time.May, 3, 9, 0, 0))
	second, err := env.goal.SetGoal(ctx, "u1", domain.NutrientVector{domain.NutrientCalories: 1800})
	require.NoError(t, err)

	history, err := env.goal.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.False(t, history[0].Active)
	assert.Equal(t, second.ID, history[1].ID)
	assert.True(t, history[1].Active)

	active, err := env.goal.ActiveGoal(ctx, "u1", utc(2024, time.May, 2, 12, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	active, err = env.goal.ActiveGoal(ctx, "u1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID, "zero instant means now")
}

func TestGoalService_ActiveGoal_NotFound(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))

	_, err := env.goal.ActiveGoal(context.Background(), "u1", time.Time{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
}

func TestGoalService_UpdateGoal_Merges(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))
	ctx := context.Background()

	_, err := env.goal.SetGoal(ctx, "u1", domain.NutrientVector{domain.NutrientCalories: 2000, domain.NutrientProtein: 100})
	require.NoError(t, err)

	env.clock.Set(utc(2024, time.May, 1, 10, 0, 0))
	updated, err := env.goal.UpdateGoal(ctx, "u1", domain.NutrientVector{domain.NutrientProtein: 130, domain.NutrientFiber: 30})
	require.NoError(t, err)

	assert.Equal(t, domain.NutrientVector{
		domain.NutrientCalories: 2000,
		domain.NutrientProtein:  130,
		domain.NutrientFiber:    30,
	}, updated.Targets)

	history, err := env.goal.History(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, history, 2, "update appends a new goal version")
	assert.Equal(t, 100.0, history[0].Targets[domain.NutrientProtein])
}

func TestGoalService_UpdateGoal_WithoutPrior(t *testing.T) {
	env := newTestEnv(utc(2024, time.May, 1, 9, 0, 0))

	goal, err := env.goal.UpdateGoal(context.Background(), "u1", domain.NutrientVector{domain.NutrientFat: 70})

	require.NoError(t, err)
	assert.Equal(t, domain.NutrientVector{domain.NutrientFat: 70}, goal.Targets)
}

func TestGoalService_StorageFailure(t *testing.T) {
	svc := NewGoalService(failingGoalStore{}, nil, FixedClock{T: utc(2024, time.May, 1, 0, 0, 0)})

	_, err := svc.SetGoal(context.Background(), "u1", domain.NutrientVector{domain.NutrientCalories: 1})

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, domain.KindStorageUnavailable, domain.Kind(err))
}
