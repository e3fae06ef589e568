// Package hub fans accepted clipboard entries out to subscribers. It is
// transport-agnostic: the engine publishes exactly one event per accepted
// entry, and watch clients (quick-access overlays, history browsers)
// subscribe instead of relying on a global notification bus. Rejected or
// filtered clipboard events never reach the hub.
package hub

import (
	"log/slog"
	"sync"

	"grabd/internal/history"
	"grabd/internal/message"
)

// Event is an accepted-entry notification delivered to a subscriber.
type Event struct {
	Entry history.Entry
}

// Subscriber is anything that wants to hear about accepted entries.
type Subscriber interface {
	ID() string
	Info() message.SubscriberInfo
	// Send delivers an event to the subscriber. Must be non-blocking.
	Send(Event)
}

// Hub routes accepted entries to all registered subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]Subscriber)}
}

// Subscribe registers s.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	total := len(h.subs)
	h.mu.Unlock()

	slog.Info("subscriber registered", "subscriber", s.ID(), "total", total)
}

// Unsubscribe removes s from the hub.
func (h *Hub) Unsubscribe(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s.ID())
	total := len(h.subs)
	h.mu.Unlock()

	slog.Info("subscriber unregistered", "subscriber", s.ID(), "total", total)
}

// Publish fans an accepted entry out to every subscriber.
func (h *Hub) Publish(e history.Entry) {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.Send(Event{Entry: e})
	}
}

// Subscribers returns a snapshot of current subscriber metadata.
func (h *Hub) Subscribers() []message.SubscriberInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]message.SubscriberInfo, 0, len(h.subs))
	for _, s := range h.subs {
		out = append(out, s.Info())
	}
	return out
}
