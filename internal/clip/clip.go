// Package clip provides the platform clipboard behind a single Backend
// interface. Build constraints select the implementation:
//
//	clip_darwin.go   golang.design/x/clipboard + cgo NSPasteboard changeCount
//	clip_linux.go    golang.design/x/clipboard, synthesized change counter
//	clip_windows.go  golang.design/x/clipboard, synthesized change counter
//	clip_other.go    headless / container stub
//
// The change counter is the engine's only mutation signal: a monotonically
// increasing value that advances whenever the clipboard is written. macOS
// exposes one natively; the other platforms synthesize it by diffing
// payload bytes between reads.
package clip

// Backend is the platform clipboard as the capture engine sees it.
// Reads never block and never fail loudly; an unreadable clipboard is
// reported as empty.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ChangeCount returns the current change-generation marker. The error
	// is advisory; the engine treats it as "no change this cycle".
	ChangeCount() (uint64, error)

	// ReadText returns the current text payload, or "" if none.
	ReadText() string

	// ReadImage returns the current image payload bytes, or nil if none.
	ReadImage() []byte

	// ReadFiles returns file references on the clipboard, or nil if none.
	ReadFiles() []string

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// WriteImage replaces the clipboard contents with image bytes.
	WriteImage(data []byte) error

	// Close releases any resources held by the backend.
	Close()
}
