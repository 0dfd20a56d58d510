package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	loc := Parse("/questions/?f=fav&collection=finance")
	assert.Equal(t, "/questions", loc.Path)
	assert.Equal(t, map[string]string{"f": "fav", "collection": "finance"}, loc.Query)
	assert.Equal(t, "/questions?collection=finance&f=fav", loc.String())

	assert.Equal(t, "/", Parse("").Path)
	assert.Equal(t, "/question/4", Parse("question/4").String())
}

func TestParseEmptyValueIsKept(t *testing.T) {
	loc := Parse("/questions?collection=")
	v, ok := loc.Query["collection"]
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestWithQueryCopies(t *testing.T) {
	base := Location{Path: "/questions", Query: map[string]string{"collection": "ops"}}
	next := base.WithQuery("f", "recent")

	assert.Equal(t, map[string]string{"collection": "ops", "f": "recent"}, next.Query)
	assert.Equal(t, map[string]string{"collection": "ops"}, base.Query)
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"questions", "collections", "ops"}, Location{Path: "/questions/collections/ops"}.Segments())
	assert.Empty(t, Location{Path: "/"}.Segments())
}

func TestHistoryPushAndBack(t *testing.T) {
	h := NewHistory(Parse("/questions"))
	h.Push(Parse("/questions/collections/ops"))
	h.Push(Parse("/question/3"))
	assert.Equal(t, 3, h.Len())

	require.True(t, h.Back())
	assert.Equal(t, "/questions/collections/ops", h.Current().Path)
	require.True(t, h.Back())
	assert.False(t, h.Back())
	assert.Equal(t, "/questions", h.Current().Path)

	require.True(t, h.Forward())
	assert.Equal(t, "/questions/collections/ops", h.Current().Path)
}

func TestPushDropsForwardEntries(t *testing.T) {
	h := NewHistory(Parse("/a"))
	h.Push(Parse("/b"))
	h.Back()
	h.Push(Parse("/c"))
	assert.False(t, h.Forward())
	assert.Equal(t, 2, h.Len())
	h.Back()
	assert.Equal(t, "/a", h.Current().Path)
}

func TestReplaceSkipsIntermediateStates(t *testing.T) {
	h := NewHistory(Parse("/collections"))
	h.Push(Parse("/questions"))
	h.Replace(h.Current().WithQuery("f", "fav"))
	h.Replace(h.Current().WithQuery("f", "recent"))

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "/questions?f=recent", h.Current().String())
	require.True(t, h.Back())
	assert.Equal(t, "/collections", h.Current().Path)
}

func TestCurrentIsACopy(t *testing.T) {
	h := NewHistory(Parse("/questions?f=all"))
	cur := h.Current()
	cur.Query["f"] = "mutated"
	assert.Equal(t, "all", h.Current().Query["f"])
}
