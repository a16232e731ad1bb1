package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("kb.path", "/tmp/politica.md"))

	val, ok := store.Get("kb.path")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/politica.md", val)

	require.NoError(t, store.Set("kb.path", "/tmp/otra.md"))
	assert.Equal(t, "/tmp/otra.md", store.GetString("kb.path"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore()

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("kb.mode", "strict")
	_ = store.Set("retrieval.top_k", 7)
	_ = store.Set("sources.max", int64(2))
	_ = store.Set("app.verbose", true)
	_ = store.Set("float", 3.7)

	assert.Equal(t, "strict", store.GetString("kb.mode"))
	assert.Equal(t, 7, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 2, store.GetInt("sources.max"))
	assert.Equal(t, 3, store.GetInt("float"))
	assert.True(t, store.GetBool("app.verbose"))

	// Wrong types fall back to zero values.
	assert.Equal(t, "", store.GetString("retrieval.top_k"))
	assert.Equal(t, 0, store.GetInt("kb.mode"))
	assert.False(t, store.GetBool("kb.mode"))

	// Missing keys fall back to zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("kb.mode", "general")
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, "general", store.GetString("kb.mode"))
}

func TestConfigStore_Path(t *testing.T) {
	store := NewConfigStore()
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_MultipleInstancesAreIndependent(t *testing.T) {
	store1 := NewConfigStore()
	store2 := NewConfigStore()

	_ = store1.Set("kb.path", "uno.md")
	_ = store2.Set("kb.path", "dos.md")

	assert.Equal(t, "uno.md", store1.GetString("kb.path"))
	assert.Equal(t, "dos.md", store2.GetString("kb.path"))
}

func TestConfigStore_ConcurrentReadWrite(t *testing.T) {
	store := NewConfigStore()

	for i := 0; i < 10; i++ {
		_ = store.Set(fmt.Sprintf("key-%d", i), i)
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = store.Set(fmt.Sprintf("key-%d", j), id*10+j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = store.GetInt(fmt.Sprintf("key-%d", j))
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		_, ok := store.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok)
	}
}
