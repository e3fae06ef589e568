//go:build windows

package clip

import (
	"bytes"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

type windowsBackend struct {
	mu       sync.Mutex
	count    uint64
	lastText []byte
	lastImg  []byte
}

// New returns the Windows clipboard backend. GetClipboardSequenceNumber
// would be the native marker, but golang.design/x/clipboard does not expose
// it, so the counter is synthesized the same way as on Linux.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewHeadless()
	}
	return &windowsBackend{}
}

func (b *windowsBackend) Name() string { return "Windows clipboard (poll)" }

func (b *windowsBackend) ChangeCount() (uint64, error) {
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

func (b *windowsBackend) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

func (b *windowsBackend) ReadImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

func (b *windowsBackend) ReadFiles() []string { return nil }

func (b *windowsBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *windowsBackend) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *windowsBackend) Close() {}
