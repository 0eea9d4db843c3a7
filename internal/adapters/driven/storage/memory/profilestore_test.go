package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

func TestProfileStore_SaveAndGet(t *testing.T) {
	store := NewProfileStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.UserProfile{UserID: "u1", Name: "Sam", Timezone: "Europe/Paris"}))
	require.NoError(t, store.Save(ctx, domain.UserProfile{UserID: "u1", Name: "Sam", Timezone: "Asia/Tokyo"}))

	p, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", p.Timezone)
}
