package classify

import (
	"bytes"
	"image"

	// Register the encodings clipboard payloads show up in. golang.design's
	// backends normalize to PNG but payloads restored from disk or handed in
	// over IPC may be JPEG or GIF.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// IsImage probes data against the registered image encodings. Only the
// header is decoded, so this stays cheap for large screenshots.
func IsImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
