package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"grabd/internal/classify"
	"grabd/internal/history"
	"grabd/internal/similarity"
)

// Pre-acceptance text filters. Selection-driven clipboard writes are
// indistinguishable from deliberate copies by the change counter alone;
// these thresholds are the line between "copied a paragraph" and
// "double-clicked a word".
const (
	minTextLen        = 15
	singleTokenMaxLen = 150
	fewWordsMaxLen    = 100
	fewWordsThreshold = 5
)

// onMutation is the settle filter's entry point: record the event in the
// sliding window, drop selection noise, and otherwise schedule the
// deferred settled read.
func (e *Engine) onMutation(ts time.Time) {
	e.mu.Lock()

	// Prune the sliding window, then record this event.
	cutoff := ts.Add(-mutationWindow)
	kept := e.window[:0]
	for _, t := range e.window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.window = append(kept, ts)

	if len(e.window) > maxWindowEvents {
		e.mu.Unlock()
		slog.Debug("mutation burst discarded", "events_in_window", len(e.window))
		return
	}
	if !e.lastScheduled.IsZero() && ts.Sub(e.lastScheduled) < minEventGap {
		e.mu.Unlock()
		slog.Debug("mutation too close to previous, discarded")
		return
	}
	e.lastScheduled = ts
	e.mu.Unlock()

	// Deferred read: let multi-step producers finish before looking. The
	// continuation acts on whatever state is present when it fires, not a
	// snapshot from now.
	time.AfterFunc(e.cfg.SettleDelay, e.settle)
}

// settle is the deferred continuation scheduled by onMutation. It re-reads
// the clipboard's current state and runs the acceptance pipeline. Several
// settles may race after a burst; they all read the same final state and
// the guard/dedup checks absorb the duplicates.
func (e *Engine) settle() {
	if e.stopped.Load() {
		return
	}

	img := e.backend.ReadImage()
	files := e.backend.ReadFiles()
	text := e.backend.ReadText()
	e.process(text, img, files)
}

// process classifies the settled payload and runs it through the guard and
// deduplication filters. Rejections are silent: they are filters, not
// errors.
func (e *Engine) process(text string, img []byte, files []string) {
	category := classify.Classify(classify.Payload{Text: text, Image: img, Files: files})

	e.mu.Lock()
	defer e.mu.Unlock()

	switch category {
	case classify.CategoryImage:
		sum := payloadSum(img)
		if e.guardActive() && sum == e.guardImageSum {
			slog.Debug("own image write suppressed")
			return
		}
		if sum == e.lastImageSum {
			return
		}
		e.lastImageSum = sum
		e.acceptLocked(history.Entry{
			Category:   category,
			Payload:    img,
			SourceSize: len(img),
		})

	case classify.CategoryFile:
		ref := strings.Join(files, "\n")
		if ref == e.lastFileRef {
			return
		}
		e.lastFileRef = ref
		e.acceptLocked(history.Entry{
			Category:   category,
			Content:    ref,
			SourceSize: len(ref),
		})

	default:
		if text == "" {
			return
		}
		if e.guardActive() && text == e.guardText {
			slog.Debug("own text write suppressed")
			return
		}
		if rejectText(text) {
			return
		}
		if e.haveLastText && e.similarLocked(text, e.lastText) {
			slog.Debug("near-duplicate text suppressed")
			return
		}
		e.lastText = text
		e.haveLastText = true
		e.acceptLocked(history.Entry{
			Category:   category,
			Content:    text,
			SourceSize: len(text),
		})
	}
}

// acceptLocked assigns identity and timestamp, then lands the entry in the
// store, cache, durable store and hub. A durable-write failure is reported
// but the in-memory entry stands; resync is the persistence collaborator's
// problem. Caller holds e.mu.
func (e *Engine) acceptLocked(entry history.Entry) {
	entry.ID = history.NewID()
	entry.Timestamp = e.now()

	e.store.Append(entry)
	e.cache.Add(entry)
	if e.durable != nil {
		if err := e.durable.Append(entry); err != nil {
			slog.Error("durable append failed", "id", entry.ID, "err", err)
		}
	}
	e.hub.Publish(entry)

	slog.Info("entry captured",
		"id", entry.ID,
		"category", entry.Category,
		"size", entry.SourceSize,
	)
}

// rejectText applies the pre-acceptance filters for selection noise.
func rejectText(text string) bool {
	n := len(text)
	if n < minTextLen {
		return true
	}
	if n < singleTokenMaxLen && !strings.ContainsAny(text, " \t\n") {
		return true
	}
	if n < fewWordsMaxLen && len(strings.Fields(text)) < fewWordsThreshold {
		return true
	}
	return false
}

// similarLocked reports whether a and b are near-duplicates. Beyond the
// length cap the quadratic edit distance is skipped and only byte equality
// counts. Caller holds e.mu.
func (e *Engine) similarLocked(a, b string) bool {
	if len(a) > e.cfg.SimilarityMaxLen || len(b) > e.cfg.SimilarityMaxLen {
		return a == b
	}
	return similarity.Score(a, b) > e.cfg.SimilarityThreshold
}

func payloadSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
