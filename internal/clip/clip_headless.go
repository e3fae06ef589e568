package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, CI). The change
// counter never advances and writes are silently discarded, so the daemon
// still serves history and IPC without a clipboard.
type headlessBackend struct{}

// NewHeadless returns the no-op backend. Exposed so the daemon can force it
// with --no-clipboard.
func NewHeadless() Backend { return &headlessBackend{} }

func (b *headlessBackend) Name() string                 { return "headless (no-op)" }
func (b *headlessBackend) ChangeCount() (uint64, error) { return 0, nil }
func (b *headlessBackend) ReadText() string             { return "" }
func (b *headlessBackend) ReadImage() []byte            { return nil }
func (b *headlessBackend) ReadFiles() []string          { return nil }
func (b *headlessBackend) WriteText(string) error       { return nil }
func (b *headlessBackend) WriteImage([]byte) error      { return nil }
func (b *headlessBackend) Close()                       {}
