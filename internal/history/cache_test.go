package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grabd/internal/classify"
)

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketLogs, BucketFor(classify.CategoryLog))
	assert.Equal(t, BucketPrompts, BucketFor(classify.CategoryPrompt))
	assert.Equal(t, BucketImages, BucketFor(classify.CategoryImage))
	// url, code, file and plain text all share the other bucket.
	for _, c := range []classify.Category{
		classify.CategoryURL, classify.CategoryCode,
		classify.CategoryFile, classify.CategoryText,
	} {
		assert.Equal(t, BucketOther, BucketFor(c))
	}
}

func TestCacheCapacityEviction(t *testing.T) {
	const n = 3
	c := NewCache(n)

	// n+k appends of the same category: the bucket holds exactly n, always
	// the most recent ones, newest first.
	for i := 0; i < n+4; i++ {
		e := textEntry(fmt.Sprintf("log-%d", i), fmt.Sprintf("log line %d", i))
		e.Category = classify.CategoryLog
		c.Add(e)
	}

	snap := c.Snapshot()
	require.Len(t, snap.Logs, n)
	assert.Equal(t, "log-6", snap.Logs[0].ID)
	assert.Equal(t, "log-4", snap.Logs[n-1].ID)

	// Other buckets are unaffected.
	assert.Empty(t, snap.Prompts)
	assert.Empty(t, snap.Images)
	assert.Empty(t, snap.Other)
}

func TestCacheFewerThanCapacity(t *testing.T) {
	c := NewCache(10)
	for i := 0; i < 4; i++ {
		e := textEntry(fmt.Sprintf("p-%d", i), "please explain this test")
		e.Category = classify.CategoryPrompt
		c.Add(e)
	}
	assert.Len(t, c.Snapshot().Prompts, 4)
}

func TestCacheRemove(t *testing.T) {
	c := NewCache(10)
	c.Add(textEntry("a", "entry a"))
	c.Add(textEntry("b", "entry b"))

	c.Remove("a")
	snap := c.Snapshot()
	require.Len(t, snap.Other, 1)
	assert.Equal(t, "b", snap.Other[0].ID)

	// Removing an unknown id is a no-op.
	c.Remove("nope")
	assert.Len(t, c.Snapshot().Other, 1)
}

func TestSnapshotIsCopy(t *testing.T) {
	c := NewCache(10)
	c.Add(textEntry("a", "entry a"))

	snap := c.Snapshot()
	snap.Other[0].Content = "mutated by reader"

	assert.Equal(t, "entry a", c.Snapshot().Other[0].Content)
}
