package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

func TestServer_GoalTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, set, err := s.handleSetGoal(ctx, nil, GoalInput{
		UserID:  "u1",
		Targets: map[string]float64{"Calories": 2000, "protein_g": 100},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Calories": 2000, "protein_g": 100}, set.Goal.Targets)

	_, updated, err := s.handleUpdateGoal(ctx, nil, GoalInput{
		UserID:  "u1",
		Targets: map[string]float64{"protein_g": 120},
	})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.Goal.Targets["Calories"])
	assert.Equal(t, 120.0, updated.Goal.Targets["protein_g"])

	_, active, err := s.handleGetGoal(ctx, nil, GetGoalInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, updated.Goal.ID, active.Goal.ID)

	_, history, err := s.handleGoalHistory(ctx, nil, UserInput{UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, 2, history.Count)
	assert.False(t, history.Goals[0].Active)
	assert.True(t, history.Goals[1].Active)
}

func TestServer_handleGetGoal_BeforeAnyGoal(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleGetGoal(context.Background(), nil, GetGoalInput{UserID: "u1", At: "2020-01-01T00:00:00Z"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_handleGetGoal_BadInstant(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleGetGoal(context.Background(), nil, GetGoalInput{UserID: "u1", At: "noon"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_handleSetGoal_RejectsNegative(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleSetGoal(context.Background(), nil, GoalInput{
		UserID:  "u1",
		Targets: map[string]float64{"protein_g": -5},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_LedgerTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, first, err := s.handleLogFood(ctx, nil, LogFoodInput{
		UserID:    "u1",
		Nutrients: map[string]float64{"calories": 300},
		MealLabel: "Breakfast",
		LoggedAt:  "2024-05-04T08:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "breakfast", first.Entry.MealLabel)
	assert.Equal(t, "meal", first.Entry.Kind)

	_, second, err := s.handleLogFood(ctx, nil, LogFoodInput{
		UserID:    "u1",
		Nutrients: map[string]float64{"calories": 500},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-04T12:00:00Z", second.Entry.LoggedAt, "defaults to now")

	_, corrected, err := s.handleCorrectFoodLog(ctx, nil, CorrectFoodLogInput{
		UserID:    "u1",
		EntryID:   first.Entry.ID,
		Nutrients: map[string]float64{"calories": 350},
	})
	require.NoError(t, err)
	assert.Equal(t, first.Entry.ID, corrected.Entry.Supersedes)
	assert.Equal(t, "breakfast", corrected.Entry.MealLabel, "unchanged fields are inherited")

	_, voided, err := s.handleVoidFoodLog(ctx, nil, VoidFoodLogInput{UserID: "u1", EntryID: second.Entry.ID, Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "void", voided.Entry.Kind)

	_, _, err = s.handleVoidFoodLog(ctx, nil, VoidFoodLogInput{UserID: "u1", EntryID: second.Entry.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, recent, err := s.handleListFoodLogs(ctx, nil, ListFoodLogsInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 4, recent.Count, "the ledger keeps every entry")

	_, ranged, err := s.handleListFoodLogs(ctx, nil, ListFoodLogsInput{
		UserID: "u1",
		From:   "2024-05-04T07:00:00Z",
		To:     "2024-05-04T09:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.Count)
}

func TestServer_handleListFoodLogs_HalfRange(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleListFoodLogs(context.Background(), nil, ListFoodLogsInput{UserID: "u1", From: "2024-05-04T07:00:00Z"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_handleLogFood_Validation(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleLogFood(context.Background(), nil, LogFoodInput{UserID: "u1", Nutrients: map[string]float64{"fat_g": -1}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = s.handleLogFood(context.Background(), nil, LogFoodInput{
		UserID: "u1", Nutrients: map[string]float64{"fat_g": 1}, LoggedAt: "tuesday",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_handleComputeProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, _, err := s.handleSetGoal(ctx, nil, GoalInput{
		UserID:  "u1",
		Targets: map[string]float64{"calories": 2000, "protein_g": 100},
	})
	require.NoError(t, err)
	for _, n := range []map[string]float64{
		{"calories": 300, "protein_g": 20},
		{"calories": 500, "protein_g": 30},
	} {
		_, _, err = s.handleLogFood(ctx, nil, LogFoodInput{UserID: "u1", Nutrients: n, LoggedAt: "2024-05-04T13:00:00Z"})
		require.NoError(t, err)
	}

	_, out, err := s.handleComputeProgress(ctx, nil, ProgressInput{UserID: "u1", Timezone: "UTC"})
	require.NoError(t, err)

	snap := out.Snapshot
	assert.Equal(t, "2024-05-04", snap.Date)
	assert.Equal(t, 800.0, snap.Consumed["calories"])
	assert.Equal(t, 1200.0, snap.Remaining["calories"])
	assert.Equal(t, 50.0, snap.Remaining["protein_g"])
	assert.InDelta(t, 0.4, snap.PercentOfGoal["calories"], 1e-9)
	assert.InDelta(t, 0.5, snap.PercentOfGoal["protein_g"], 1e-9)
}

func TestServer_handleComputeProgress_NoGoal(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleComputeProgress(context.Background(), nil, ProgressInput{UserID: "u1", Timezone: "UTC"})
	assert.ErrorIs(t, err, domain.ErrNoGoalSet)
}

func TestServer_handleComputeProgress_TimezoneRequired(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleComputeProgress(context.Background(), nil, ProgressInput{UserID: "u1"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "timezone required")
}

func TestServer_handleComputeProgress_ProfileTimezone(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, _, err := s.handleUpdateProfile(ctx, nil, UpdateProfileInput{UserID: "u1", Profile: profileWithTZ("Asia/Tokyo")})
	require.NoError(t, err)
	_, _, err = s.handleSetGoal(ctx, nil, GoalInput{UserID: "u1", Targets: map[string]float64{"calories": 2000}})
	require.NoError(t, err)

	// The goal was created at 21:00 on 4 May in Tokyo, so 5 May is the
	// first whole day it covers.
	_, out, err := s.handleComputeProgress(ctx, nil, ProgressInput{UserID: "u1", Date: "2024-05-05"})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", out.Snapshot.Timezone)
	assert.Equal(t, "2024-05-05T00:00:00+09:00", out.Snapshot.WindowStart)
}

func TestServer_handleProgressHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, WithDefaultLocation(mustLoad(t, "UTC")))

	_, _, err := s.handleSetGoal(ctx, nil, GoalInput{UserID: "u1", Targets: map[string]float64{"calories": 2000}})
	require.NoError(t, err)

	_, out, err := s.handleProgressHistory(ctx, nil, ProgressHistoryInput{UserID: "u1", From: "2024-05-03", To: "2024-05-05"})
	require.NoError(t, err)
	require.Equal(t, 3, out.Count)
	assert.Empty(t, out.Days[0].GoalID, "no goal existed on 3 May")
	assert.NotEmpty(t, out.Days[1].GoalID, "the goal created mid-day covers 4 May")
	assert.NotEmpty(t, out.Days[2].GoalID)

	_, _, err = s.handleProgressHistory(ctx, nil, ProgressHistoryInput{UserID: "u1", From: "May 3", To: "2024-05-05"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_ProfileTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, _, err := s.handleGetProfile(ctx, nil, UserInput{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in := profileWithTZ("Europe/Berlin")
	in.WeightKg = 70
	in.ActivityLevel = "Active"
	_, updated, err := s.handleUpdateProfile(ctx, nil, UpdateProfileInput{UserID: "u1", Profile: in})
	require.NoError(t, err)
	assert.Equal(t, "active", updated.Profile.ActivityLevel)
	assert.NotEmpty(t, updated.Profile.UpdatedAt)

	_, got, err := s.handleGetProfile(ctx, nil, UserInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", got.Profile.Timezone)

	bad := profileWithTZ("Atlantis/Capital")
	_, _, err = s.handleUpdateProfile(ctx, nil, UpdateProfileInput{UserID: "u1", Profile: bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestServer_ProfileTools_NotConfigured(t *testing.T) {
	ports := newTestPorts()
	ports.Profile = nil
	s, err := NewServer(ports)
	require.NoError(t, err)

	_, _, err = s.handleGetProfile(context.Background(), nil, UserInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrProfileUnavailable)
	_, _, err = s.handleUpdateProfile(context.Background(), nil, UpdateProfileInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrProfileUnavailable)
}
