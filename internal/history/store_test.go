package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grabd/internal/classify"
)

func textEntry(id, content string) Entry {
	return Entry{
		ID:         id,
		Category:   classify.CategoryText,
		Content:    content,
		Timestamp:  time.Now(),
		SourceSize: len(content),
	}
}

func TestStoreAppendGetRemove(t *testing.T) {
	s := NewStore()
	s.Append(textEntry("a", "first entry payload"))
	s.Append(textEntry("b", "second entry payload"))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first entry payload", got.Content)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Append(textEntry(fmt.Sprintf("id-%d", i), fmt.Sprintf("entry number %d", i)))
	}

	all := s.List(0, 0)
	require.Len(t, all, 5)
	assert.Equal(t, "id-4", all[0].ID)
	assert.Equal(t, "id-0", all[4].ID)

	page := s.List(2, 1)
	require.Len(t, page, 2)
	assert.Equal(t, "id-3", page[0].ID)
	assert.Equal(t, "id-2", page[1].ID)
}

func TestStoreDuplicateIDIgnored(t *testing.T) {
	s := NewStore()
	s.Append(textEntry("a", "original"))
	s.Append(textEntry("a", "imposter"))

	require.Equal(t, 1, s.Len())
	got, _ := s.Get("a")
	assert.Equal(t, "original", got.Content)
}

func TestNewIDOrdered(t *testing.T) {
	// ULIDs are lexicographically ordered by time; consecutive IDs from
	// the same process must at least be unique.
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
}
