package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Put("/api/collection?", []byte(`[{"id":1}]`)))
	body, ok := c.Get("/api/collection?")
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(body))

	_, ok = c.Get("/api/card?f=all")
	assert.False(t, ok)
}

func TestRejectsNonJSON(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, c.Put("k", []byte("<html>")))
}

func TestExpiry(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.MaxAge = time.Hour

	require.NoError(t, c.Put("k", []byte(`{}`)))
	now = now.Add(30 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Put("k", []byte(`1`)))
	require.NoError(t, c.Purge())
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
