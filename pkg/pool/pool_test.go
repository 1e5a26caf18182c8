package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorEmpty(t *testing.T) {
	c := NewCursor[string](nil)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Len())

	_, ok := c.Next()
	assert.False(t, ok)
}

func TestCursorRoundRobinCycles(t *testing.T) {
	c := NewCursor([]string{"a", "b", "c"})

	// Two full cycles: insertion order, nothing skipped or duplicated.
	want := []string{"a", "b", "c", "a", "b", "c"}
	for i, w := range want {
		got, ok := c.Next()
		require.True(t, ok, "call %d", i)
		assert.Equal(t, w, got, "call %d", i)
	}
}

func TestCursorPushKeepsCursorPosition(t *testing.T) {
	c := NewCursor([]string{"a", "b"})

	got, _ := c.Next()
	assert.Equal(t, "a", got)

	c.Push("c")

	got, _ = c.Next()
	assert.Equal(t, "b", got)
	got, _ = c.Next()
	assert.Equal(t, "c", got)
	got, _ = c.Next()
	assert.Equal(t, "a", got)
}

func TestCursorRemove(t *testing.T) {
	c := NewCursor([]string{"a", "b", "c"})

	removed := c.Remove(func(s string) bool { return s == "b" })
	assert.True(t, removed)
	assert.Equal(t, 2, c.Len())

	got, _ := c.Next()
	assert.Equal(t, "a", got)
	got, _ = c.Next()
	assert.Equal(t, "c", got)
	got, _ = c.Next()
	assert.Equal(t, "a", got)

	removed = c.Remove(func(s string) bool { return s == "missing" })
	assert.False(t, removed)
}

func TestCursorRemoveLastElement(t *testing.T) {
	c := NewCursor([]string{"only"})
	_, ok := c.Next()
	require.True(t, ok)

	c.Remove(func(s string) bool { return s == "only" })
	assert.True(t, c.IsEmpty())

	_, ok = c.Next()
	assert.False(t, ok)
}

func TestCursorRemoveBeforeCursor(t *testing.T) {
	c := NewCursor([]string{"a", "b", "c"})

	// Advance past "a" and "b", then remove "a": the cursor should keep
	// pointing at "c".
	c.Next()
	c.Next()
	c.Remove(func(s string) bool { return s == "a" })

	got, _ := c.Next()
	assert.Equal(t, "c", got)
	got, _ = c.Next()
	assert.Equal(t, "b", got)
}

func TestCursorContains(t *testing.T) {
	c := NewCursor([]string{"a"})
	assert.True(t, c.Contains(func(s string) bool { return s == "a" }))
	assert.False(t, c.Contains(func(s string) bool { return s == "b" }))
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](3)

	assert.True(t, q.TryPush(1))
	assert.True(t, q.TryPush(2))
	assert.True(t, q.TryPush(3))
	assert.Equal(t, 3, q.Len())

	// At capacity.
	assert.False(t, q.TryPush(4))

	got, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 1, got)
	got, ok = q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 2, got)
	got, ok = q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = q.TryPop()
	assert.False(t, ok)
}
