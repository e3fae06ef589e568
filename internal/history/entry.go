// Package history holds the in-memory record of accepted clipboard entries:
// an append-only, newest-first store plus the derived categorized cache that
// quick-access surfaces read from.
package history

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"grabd/internal/classify"
)

// Entry is one accepted clipboard capture. Entries are immutable after
// creation; the only lifecycle transitions are append and removal.
type Entry struct {
	ID        string
	Category  classify.Category
	Content   string // text payload, or the path for file entries
	Payload   []byte // binary payload (image entries only)
	Timestamp time.Time
	// SourceSize is the byte length of whichever of Content/Payload is set,
	// kept for display and storage accounting.
	SourceSize int
}

// NewID returns a fresh ULID. IDs sort by creation time, which keeps the
// durable store's ordering stable across restarts.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
