package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

func TestGoalCmd_Use(t *testing.T) {
	assert.Equal(t, "goal", goalCmd.Use)
	assert.Equal(t, "set nutrient=amount...", goalSetCmd.Use)
}

func TestGoalSet_RequiresTargets(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "goal", "set")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestGoalSet_PrintsGoal(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "goal", "set", "calories=2000", "protein=120")

	require.NoError(t, err)
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "calories")
	assert.Contains(t, out, "2000")
	assert.Contains(t, out, "120")
}

func TestGoalSet_RejectsMalformedTarget(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "goal", "set", "calories")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGoalUpdate_MergesTargets(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "goal", "set", "calories=2000", "protein=100")
	require.NoError(t, err)

	out, err := execute(t, "goal", "update", "protein=150", "--json")
	require.NoError(t, err)

	var goal present.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &goal))
	assert.InDelta(t, 2000, goal.Targets["calories"], 1e-9)
	assert.InDelta(t, 150, goal.Targets["protein"], 1e-9)
	assert.True(t, goal.Active)
}

func TestGoalShow_NoGoal(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "goal", "show")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGoalShow_BadInstant(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "goal", "show", "--at", "yesterday")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGoalHistory(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "goal", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No goals set.")

	_, err = execute(t, "goal", "set", "calories=2000")
	require.NoError(t, err)
	_, err = execute(t, "goal", "set", "calories=1800")
	require.NoError(t, err)

	out, err = execute(t, "goal", "history", "--json")
	require.NoError(t, err)

	var goals []present.Goal
	require.NoError(t, json.Unmarshal([]byte(out), &goals))
	require.Len(t, goals, 2)
	assert.False(t, goals[0].Active)
	assert.True(t, goals[1].Active)
}

func TestGoal_UserFlagIsolatesUsers(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "--user", "alice", "goal", "set", "calories=2000")
	require.NoError(t, err)

	_, err = execute(t, "--user", "bob", "goal", "show")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = execute(t, "-u", "alice", "goal", "show")
	assert.NoError(t, err)
}
