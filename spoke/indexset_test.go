package spoke

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func indexSetOf(indices ...Index) *IndexSet {
	var set IndexSet
	for _, idx := range indices {
		set.Insert(idx)
	}

	return &set
}

func TestIndexSet(t *testing.T) {
	var set IndexSet

	require.True(t, set.Insert(130))
	require.True(t, set.Insert(3))
	require.True(t, set.Insert(64))
	require.False(t, set.Insert(3))

	require.Equal(t, 3, set.Len())
	require.True(t, set.Has(64))
	require.False(t, set.Has(65))
	require.False(t, set.Has(10_000))

	require.Equal(t, []Index{3, 64, 130}, slices.Collect(set.All()))

	require.True(t, set.Remove(64))
	require.False(t, set.Remove(64))
	require.Equal(t, []Index{3, 130}, set.AppendTo(nil))

	set.Clear()
	require.Equal(t, 0, set.Len())
	require.Empty(t, slices.Collect(set.All()))
}

func TestIntersect(t *testing.T) {
	a := indexSetOf(0, 1, 2, 3, 4, 5, 70)
	b := indexSetOf(1, 3, 5, 70, 200)
	c := indexSetOf(3, 70)

	require.Equal(t, []Index{1, 3, 5, 70}, Intersect(nil, a, b))
	require.Equal(t, []Index{3, 70}, Intersect(nil, a, b, c))
	require.Equal(t, []Index{3, 70}, Intersect(nil, c, b, a))

	require.Empty(t, Intersect(nil, a, &IndexSet{}))
	require.Empty(t, Intersect(nil))

	// appends to the existing buffer
	require.Equal(t, []Index{99, 3, 70}, Intersect([]Index{99}, a, c))
}
