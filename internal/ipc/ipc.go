// Package ipc provides helpers for the local Unix-socket channel that UI
// surfaces and CLI sub-commands (history, quick, recopy, remove, status)
// use to talk to a running grabd daemon. The daemon is the only process
// that touches the clipboard or the history database; everything else goes
// through this socket.
package ipc

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
)

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - $GRABD_SOCKET if set
//   - Linux: $XDG_RUNTIME_DIR/grabd.sock when available
//   - otherwise: $TMPDIR/grabd.sock
//   - Windows: \\.\pipe\grabd (named pipe, not yet implemented)
func SocketPath() string {
	if s := os.Getenv("GRABD_SOCKET"); s != "" {
		return s
	}
	if runtime.GOOS == "windows" {
		return `\\.\pipe\grabd`
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "grabd.sock")
	}
	return filepath.Join(os.TempDir(), "grabd.sock")
}

// IsRunning reports whether a grabd daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the IPC socket path,
// removing any stale socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the IPC socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
