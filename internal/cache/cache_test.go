package cache

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	type payload struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	require.NoError(t, c.Put("sheets:MALE TOILETS", payload{Name: "csv body", N: 42}))

	var got payload
	require.True(t, c.Get("sheets:MALE TOILETS", time.Hour, &got))
	assert.Equal(t, payload{Name: "csv body", N: 42}, got)
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	var got string
	assert.False(t, c.Get("never-written", time.Hour, &got))
}

func TestGetExpiredEntry(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("k", "value"))

	// Move the clock a week forward.
	c.now = func() time.Time { return time.Now().Add(7 * 24 * time.Hour) }

	var got string
	assert.False(t, c.Get("k", time.Hour, &got))
	assert.True(t, c.Get("k", 8*24*time.Hour, &got))
	assert.Equal(t, "value", got)
}

func TestGetStaleIgnoresExpiry(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("maps:MAP", "old kml body"))

	// A month past any TTL.
	c.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }

	var got string
	require.False(t, c.Get("maps:MAP", TTLMaps, &got))
	require.True(t, c.GetStale("maps:MAP", &got))
	assert.Equal(t, "old kml body", got)
}

func TestGetStaleMissingKey(t *testing.T) {
	c := newTestCache(t)
	var got string
	assert.False(t, c.GetStale("never-written", &got))
}

func TestGetCorruptEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("k", "value"))

	// Clobber the entry file.
	entries, err := os.ReadDir(c.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(c.dir+"/"+entries[0].Name(), []byte("{not json"), 0o644))

	var got string
	assert.False(t, c.Get("k", time.Hour, &got))
}

func TestDistinctKeysDistinctFiles(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2))

	entries, err := os.ReadDir(c.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	var a, b int
	require.True(t, c.Get("a", time.Hour, &a))
	require.True(t, c.Get("b", time.Hour, &b))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
