// Package message defines the grabd IPC protocol.
//
// All messages are newline-delimited JSON; binary payloads are base64 inside
// JSON strings (encoding/json's []byte handling). Each message is exactly
// one line: <json>\n. Clients send one request and read one response,
// except WATCH, which upgrades the connection to a stream of EVENT
// messages.
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"grabd/internal/classify"
	"grabd/internal/history"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests.
	TypeList   Type = "LIST"
	TypeQuick  Type = "QUICK"
	TypeGet    Type = "GET"
	TypeRecopy Type = "RECOPY"
	TypeRemove Type = "REMOVE"
	TypeStatus Type = "STATUS"
	TypeWatch  Type = "WATCH"

	// Responses.
	TypeEntries        Type = "ENTRIES"
	TypeSnapshot       Type = "SNAPSHOT"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeEvent          Type = "EVENT"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
)

// Entry is the wire form of a history entry.
type Entry struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Content    string    `json:"content,omitempty"`
	Payload    []byte    `json:"payload,omitempty"` // base64 on the wire
	Timestamp  time.Time `json:"timestamp"`
	SourceSize int       `json:"source_size"`
}

// FromHistory converts a history entry to its wire form.
func FromHistory(e history.Entry) Entry {
	return Entry{
		ID:         e.ID,
		Category:   string(e.Category),
		Content:    e.Content,
		Payload:    e.Payload,
		Timestamp:  e.Timestamp,
		SourceSize: e.SourceSize,
	}
}

// FromHistorySlice converts a slice of history entries.
func FromHistorySlice(entries []history.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = FromHistory(e)
	}
	return out
}

// ToHistory converts a wire entry back to the history form.
func (e Entry) ToHistory() history.Entry {
	return history.Entry{
		ID:         e.ID,
		Category:   classify.Category(e.Category),
		Content:    e.Content,
		Payload:    e.Payload,
		Timestamp:  e.Timestamp,
		SourceSize: e.SourceSize,
	}
}

// Snapshot is the wire form of the categorized cache.
type Snapshot struct {
	Logs    []Entry `json:"logs"`
	Prompts []Entry `json:"prompts"`
	Images  []Entry `json:"images"`
	Other   []Entry `json:"other"`
}

// SubscriberInfo carries metadata about a connected watch client, used in
// STATUS responses.
type SubscriberInfo struct {
	ID          string    `json:"id"`
	Addr        string    `json:"addr"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// LIST / GET / RECOPY / REMOVE
	ID     string `json:"id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`

	// ENTRIES / EVENT (single entry per event)
	Entries []Entry `json:"entries,omitempty"`

	// SNAPSHOT
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// STATUS_RESPONSE
	Backend     string           `json:"backend,omitempty"`
	Total       int              `json:"total,omitempty"`
	Subscribers []SubscriberInfo `json:"subscribers,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR message.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
