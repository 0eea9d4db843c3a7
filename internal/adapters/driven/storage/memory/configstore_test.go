package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Empty(t, store.Path())
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("log.level", "info"))
	require.NoError(t, store.Set("log.level", "debug"))

	val, ok := store.Get("log.level")
	assert.True(t, ok)
	assert.Equal(t, "debug", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("mcp.burst", 10))
	require.NoError(t, store.Set("mcp.rate_limit", 2.0))
	require.NoError(t, store.Set("storage.timeout", "2s"))
	require.NoError(t, store.Set("http.read_timeout", 3*time.Second))

	assert.Equal(t, 10, store.GetInt("mcp.burst"))
	assert.Equal(t, 2, store.GetInt("mcp.rate_limit"))
	assert.Equal(t, 2*time.Second, store.GetDuration("storage.timeout"))
	assert.Equal(t, 3*time.Second, store.GetDuration("http.read_timeout"))
	assert.Equal(t, "", store.GetString("mcp.burst"))
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_KeysAndUnset(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("b.key", 1))
	require.NoError(t, store.Set("a.key", 2))

	assert.Equal(t, []string{"a.key", "b.key"}, store.Keys())

	require.NoError(t, store.Unset("a.key"))
	assert.Equal(t, []string{"b.key"}, store.Keys())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
