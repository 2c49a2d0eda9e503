package resolve

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_MemoryWriteOnce(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("x.com")
	assert.False(t, ok)

	c.Put("x.com", ProviderGoogle)
	c.Put("x.com", ProviderMicrosoft) // later write ignored

	p, ok := c.Get("x.com")
	require.True(t, ok)
	assert.Equal(t, ProviderGoogle, p)
	assert.Equal(t, 1, c.Len())
}

func TestCache_PersistAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.db")

	c1, err := NewPersistentCache(path)
	require.NoError(t, err)
	c1.Put("x.com", ProviderGoogle)
	c1.Put("y.com", ProviderOther)
	require.NoError(t, c1.Close())

	c2, err := NewPersistentCache(path)
	require.NoError(t, err)
	defer c2.Close()

	p, ok := c2.Get("x.com")
	require.True(t, ok)
	assert.Equal(t, ProviderGoogle, p)

	n, err := c2.PersistedCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCache_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.db")
	c, err := NewPersistentCache(path)
	require.NoError(t, err)
	defer c.Close()

	c.Put("x.com", ProviderGoogle)
	require.NoError(t, c.Clear())

	_, ok := c.Get("x.com")
	assert.False(t, ok)

	n, err := c.PersistedCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_MemoryOnlyNoPersistence(t *testing.T) {
	c := NewCache()
	c.Put("x.com", ProviderGoogle)

	n, err := c.PersistedCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Clear())
}
