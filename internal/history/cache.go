package history

import (
	"sync"

	"grabd/internal/classify"
)

// Bucket names one of the four fixed quick-access groupings.
type Bucket string

const (
	BucketLogs    Bucket = "logs"
	BucketPrompts Bucket = "prompts"
	BucketImages  Bucket = "images"
	BucketOther   Bucket = "other"
)

// BucketFor maps a category to its cache bucket. Everything that is not a
// log, prompt or image (url, code, file, plain text) lands in other.
func BucketFor(c classify.Category) Bucket {
	switch c {
	case classify.CategoryLog:
		return BucketLogs
	case classify.CategoryPrompt:
		return BucketPrompts
	case classify.CategoryImage:
		return BucketImages
	default:
		return BucketOther
	}
}

// DefaultBucketCapacity is the per-bucket entry cap when none is configured.
const DefaultBucketCapacity = 10

// Cache is the derived quick-access view over the Store: four fixed
// buckets, each holding the N most recent entries of its categories,
// newest first. It is maintained incrementally on every append and
// removal, never by rescanning the history.
type Cache struct {
	mu      sync.RWMutex
	cap     int
	buckets map[Bucket][]Entry
}

// Snapshot is a point-in-time copy of all four buckets, safe to hand
// across goroutines.
type Snapshot struct {
	Logs    []Entry
	Prompts []Entry
	Images  []Entry
	Other   []Entry
}

// NewCache returns an empty cache with the given per-bucket capacity.
// capacity <= 0 falls back to DefaultBucketCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultBucketCapacity
	}
	return &Cache{
		cap: capacity,
		buckets: map[Bucket][]Entry{
			BucketLogs:    nil,
			BucketPrompts: nil,
			BucketImages:  nil,
			BucketOther:   nil,
		},
	}
}

// Add prepends e to its bucket and evicts that bucket's oldest entry when
// the capacity is exceeded. Other buckets are untouched.
func (c *Cache) Add(e Entry) {
	b := BucketFor(e.Category)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := append([]Entry{e}, c.buckets[b]...)
	if len(bucket) > c.cap {
		bucket = bucket[:c.cap]
	}
	c.buckets[b] = bucket
}

// Remove drops the entry with the given id from whichever bucket holds it.
// Removal does not backfill from the history store; the slot is simply
// freed for the next append.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for b, bucket := range c.buckets {
		for i, e := range bucket {
			if e.ID == id {
				c.buckets[b] = append(bucket[:i:i], bucket[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current bucket contents.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := func(b Bucket) []Entry {
		out := make([]Entry, len(c.buckets[b]))
		copy(out, c.buckets[b])
		return out
	}
	return Snapshot{
		Logs:    cp(BucketLogs),
		Prompts: cp(BucketPrompts),
		Images:  cp(BucketImages),
		Other:   cp(BucketOther),
	}
}
