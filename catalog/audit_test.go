package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlipCountAscendingInserts(t *testing.T) {
	c := New()
	// 10: root. 20: red child. 30: rotation recolors 10 and 20.
	// 40: uncle is red, so 10 and 30 turn black.
	want := []int{0, 0, 2, 4}
	for i, id := range []int{10, 20, 30, 40} {
		require.NoError(t, c.Insert(id, "T", "A", Available))
		assert.Equal(t, want[i], c.FlipCount(), "after inserting %d", id)
	}
}

func TestFlipCountIncludesDeletions(t *testing.T) {
	c := newTestCatalog(t, 1, 2, 3, 4, 5, 6, 7)
	require.Equal(t, 11, c.FlipCount())

	// Removing 1 turns 3 red and 4 black.
	_, err := c.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, 13, c.FlipCount())
}

func TestFlipCountIgnoresFailedMutations(t *testing.T) {
	c := newTestCatalog(t, 10, 20, 30)
	flips := c.FlipCount()

	assert.ErrorIs(t, c.Insert(20, "T", "A", Available), ErrDuplicateKey)
	_, err := c.Remove(99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Acquire(1, 10, 1)
	require.NoError(t, err)

	assert.Equal(t, flips, c.FlipCount())
}

func TestColorAuditSkipsKeysOnlyOnOneSide(t *testing.T) {
	tree := treeOf(t, 2)
	var a colorAudit
	assert.Zero(t, a.observe(tree))

	// 2 is replaced by 3 at the same position; 2 and 3 never coexist.
	tree.delete(tree.root)
	tree.insert(record{id: 3})
	assert.Zero(t, a.observe(tree))
	assert.Equal(t, map[int]Color{3: black}, a.snapshot)
}

func TestFlipCountNonDecreasing(t *testing.T) {
	c := New()
	last := 0
	for i := 0; i < 200; i++ {
		id := (i * 37) % 101
		if _, ok := c.Search(id); ok {
			_, err := c.Remove(id)
			require.NoError(t, err)
		} else {
			require.NoError(t, c.Insert(id, "T", "A", Available))
		}
		require.GreaterOrEqual(t, c.FlipCount(), last)
		last = c.FlipCount()
	}
}
