//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger grabd_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

import (
	"log/slog"

	"golang.design/x/clipboard"
)

type darwinBackend struct{}

// New returns the macOS clipboard backend. NSPasteboard exposes a native
// changeCount, so no payload diffing is needed to detect mutation.
// clipboard.Init is called here rather than in init() so that client
// sub-commands that never construct a Backend don't log spurious warnings.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed, running headless", "err", err)
		return NewHeadless()
	}
	return &darwinBackend{}
}

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

func (b *darwinBackend) ChangeCount() (uint64, error) {
	return uint64(C.grabd_changeCount()), nil
}

func (b *darwinBackend) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

func (b *darwinBackend) ReadImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

// ReadFiles is unsupported through golang.design/x/clipboard; NSPasteboard
// file URLs would need a dedicated cgo path.
func (b *darwinBackend) ReadFiles() []string { return nil }

func (b *darwinBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *darwinBackend) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *darwinBackend) Close() {}
