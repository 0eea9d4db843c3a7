package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

func TestProfileShow_NotFound(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "profile", "show")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileSet_CreatesAndMerges(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "profile", "set", "--name", "Sam", "--weight", "72.5", "--activity", "Moderate")
	require.NoError(t, err)

	out, err := execute(t, "profile", "set", "--timezone", "Europe/Berlin", "--json")
	require.NoError(t, err)

	var p present.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Sam", p.Name, "unchanged fields are kept")
	assert.InDelta(t, 72.5, p.WeightKg, 1e-9)
	assert.Equal(t, "moderate", p.ActivityLevel)
	assert.Equal(t, "Europe/Berlin", p.Timezone)
	assert.Equal(t, "default", p.UserID)
}

func TestProfileSet_ClearsFieldWhenGivenEmpty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "profile", "set", "--name", "Sam", "--diet", "vegetarian")
	require.NoError(t, err)
	_, err = execute(t, "profile", "set", "--diet", "")
	require.NoError(t, err)

	out, err := execute(t, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Sam")
	assert.NotContains(t, out, "vegetarian")
}

func TestProfileSet_Invalid(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "profile", "set", "--timezone", "Mars/Olympus")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = execute(t, "profile", "set", "--age", "200")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProfileShow_Text(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "profile", "set", "--name", "Sam", "--age", "34")
	require.NoError(t, err)

	out, err := execute(t, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile for default")
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "34")
	assert.NotContains(t, out, "weight_kg")
}
