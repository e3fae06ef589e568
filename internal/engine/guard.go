package engine

import "fmt"

// MarkInternalWrite arms the feedback guard for the given payload. Call
// immediately before writing engine-owned content back to the platform
// clipboard; the guard disarms itself after the configured window, so a
// genuinely new external copy of the same content later still records.
func (e *Engine) MarkInternalWrite(text string, img []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.guardText = text
	e.guardImageSum = ""
	if len(img) > 0 {
		e.guardImageSum = payloadSum(img)
	}
	e.guardDeadline = e.now().Add(e.cfg.GuardWindow)
}

// guardActive reports whether the guard window is still open. Caller holds
// e.mu.
func (e *Engine) guardActive() bool {
	return !e.guardDeadline.IsZero() && e.now().Before(e.guardDeadline)
}

// Recopy writes a history entry back to the platform clipboard: the user
// picked it from history. The guard is armed first so the detector's next
// cycle does not re-record our own write as new content.
func (e *Engine) Recopy(id string) error {
	entry, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("entry %s not found", id)
	}

	if len(entry.Payload) > 0 {
		e.MarkInternalWrite("", entry.Payload)
		return e.backend.WriteImage(entry.Payload)
	}
	e.MarkInternalWrite(entry.Content, nil)
	return e.backend.WriteText(entry.Content)
}
