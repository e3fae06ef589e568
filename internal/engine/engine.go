// Package engine implements the clipboard capture pipeline: a polling
// change detector feeding a settle filter, feedback guard, content
// classifier and similarity deduplicator, with accepted entries landing in
// the history store, the categorized cache, the durable store and the hub.
//
// The clipboard gives us nothing but a change-generation counter, no
// origin information, so everything here is a judgment call on noisy
// signals: was that a deliberate copy, selection noise, an intermediate
// step of some other app's multi-stage write, or our own copy-back
// echoing?
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"grabd/internal/clip"
	"grabd/internal/history"
	"grabd/internal/hub"
)

// Defaults for the tunable parameters. The similarity threshold and the
// settle delay are empirical, not derived; both are exposed through Config
// rather than frozen.
const (
	DefaultPollInterval        = 500 * time.Millisecond
	DefaultSettleDelay         = 1 * time.Second
	DefaultGuardWindow         = 500 * time.Millisecond
	DefaultSimilarityThreshold = 0.7
	DefaultSimilarityMaxLen    = 1000
)

// Fixed noise-filter parameters. Deliberately not configurable: they
// encode what "selection noise" looks like, which does not vary by taste.
const (
	mutationWindow  = 2 * time.Second
	maxWindowEvents = 3
	minEventGap     = 300 * time.Millisecond
)

// Config carries the engine tunables. Zero values fall back to the
// defaults above.
type Config struct {
	PollInterval        time.Duration
	SettleDelay         time.Duration
	GuardWindow         time.Duration
	SimilarityThreshold float64
	SimilarityMaxLen    int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.GuardWindow <= 0 {
		c.GuardWindow = DefaultGuardWindow
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.SimilarityMaxLen <= 0 {
		c.SimilarityMaxLen = DefaultSimilarityMaxLen
	}
	return c
}

// DurableStore is the engine's view of the persistence collaborator.
// Failures are reported but never roll back in-memory state.
type DurableStore interface {
	Append(history.Entry) error
	Delete(id string) error
}

// Engine owns the capture pipeline state. Construct one per process with
// injected collaborators; there are no package-level singletons.
type Engine struct {
	cfg     Config
	backend clip.Backend
	store   *history.Store
	cache   *history.Cache
	durable DurableStore // may be nil
	hub     *hub.Hub

	// now is the clock; swapped out in tests.
	now func() time.Time

	stopped atomic.Bool

	mu sync.Mutex
	// Change detector.
	lastMarker uint64
	haveMarker bool
	// Settle filter.
	window        []time.Time
	lastScheduled time.Time
	// Feedback guard.
	guardText     string
	guardImageSum string
	guardDeadline time.Time
	// Deduplication against the most recently accepted entry.
	lastText     string
	haveLastText bool
	lastImageSum string
	lastFileRef  string
}

// New wires up an engine. durable may be nil to run without persistence.
func New(cfg Config, backend clip.Backend, store *history.Store, cache *history.Cache, durable DurableStore, h *hub.Hub) *Engine {
	return &Engine{
		cfg:     cfg.withDefaults(),
		backend: backend,
		store:   store,
		cache:   cache,
		durable: durable,
		hub:     h,
		now:     time.Now,
	}
}

// BackendName names the clipboard backend, for status reporting.
func (e *Engine) BackendName() string { return e.backend.Name() }

// Store exposes the history store to read-only consumers.
func (e *Engine) Store() *history.Store { return e.store }

// Cache exposes the categorized cache to read-only consumers.
func (e *Engine) Cache() *history.Cache { return e.cache }

// Run polls the clipboard change counter until ctx is cancelled. This is
// the only place the raw clipboard marker is read; deferred settle
// continuations re-read payloads but never the counter.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	slog.Info("capture engine started",
		"backend", e.backend.Name(),
		"poll_interval", e.cfg.PollInterval,
		"settle_delay", e.cfg.SettleDelay,
	)

	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case <-ticker.C:
			e.tick()
		}
	}
}

// Stop flips the liveness flag. In-flight settle continuations check it
// before touching the store, so stopping the poll loop is sufficient for a
// clean teardown.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// tick performs one detector cycle: read the change-generation marker and
// hand any advance to the settle filter. A read failure is "no change".
func (e *Engine) tick() {
	marker, err := e.backend.ChangeCount()
	if err != nil {
		return
	}

	e.mu.Lock()
	if !e.haveMarker {
		// First observation is the baseline, not a mutation.
		e.haveMarker = true
		e.lastMarker = marker
		e.mu.Unlock()
		return
	}
	if marker == e.lastMarker {
		e.mu.Unlock()
		return
	}
	e.lastMarker = marker
	e.mu.Unlock()

	e.onMutation(e.now())
}

// Restore replays durably persisted entries (oldest first) into the store
// and cache, and primes the dedup state from the newest text entry so the
// first capture after a restart is still checked against it.
func (e *Engine) Restore(entries []history.Entry) {
	for _, entry := range entries {
		e.store.Append(entry)
		e.cache.Add(entry)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Content != "" && len(entries[i].Payload) == 0 {
			e.lastText = entries[i].Content
			e.haveLastText = true
			break
		}
	}
}

// Remove deletes an entry everywhere: history store, cache and durable
// store. Reports whether the entry existed in memory.
func (e *Engine) Remove(id string) bool {
	ok := e.store.Remove(id)
	if ok {
		e.cache.Remove(id)
	}
	if e.durable != nil {
		if err := e.durable.Delete(id); err != nil {
			slog.Error("durable delete failed", "id", id, "err", err)
		}
	}
	return ok
}
