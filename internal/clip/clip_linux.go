//go:build linux

package clip

import (
	"bytes"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

type linuxBackend struct {
	mu       sync.Mutex
	count    uint64
	lastText []byte
	lastImg  []byte
}

// New returns the Linux clipboard backend, or the headless no-op backend if
// the display environment is unavailable (e.g. a server without X11 or
// Wayland). clipboard.Init is called here rather than in init() so that
// client sub-commands (history, status, ...) don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewHeadless()
	}
	return &linuxBackend{}
}

func (b *linuxBackend) Name() string { return "Linux clipboard (poll)" }

// ChangeCount synthesizes a change-generation marker: X11/Wayland expose no
// native counter, so each call re-reads the payloads and bumps the counter
// when they differ from the previous read.
func (b *linuxBackend) ChangeCount() (uint64, error) {
	text := clipboard.Read(clipboard.FmtText)
	img := clipboard.Read(clipboard.FmtImage)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
		b.lastText = text
		b.lastImg = img
		b.count++
	}
	return b.count, nil
}

func (b *linuxBackend) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

func (b *linuxBackend) ReadImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

// ReadFiles is unsupported on this backend: golang.design/x/clipboard does
// not expose text/uri-list targets.
func (b *linuxBackend) ReadFiles() []string { return nil }

func (b *linuxBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *linuxBackend) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *linuxBackend) Close() {}
