package providers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// fallbackAudioMime is used when the bytes do not look like a known audio format.
const fallbackAudioMime = "audio/mpeg"

// readAudio loads the whole file and detects its audio MIME type.
func readAudio(fs afero.Fs, path string) ([]byte, string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio file: %w", err)
	}
	return data, detectAudioMime(data), nil
}

func detectAudioMime(data []byte) string {
	detected := mimetype.Detect(data)
	// strip parameters such as "; charset=..."
	mime := strings.TrimSpace(strings.SplitN(detected.String(), ";", 2)[0])
	if strings.HasPrefix(mime, "audio/") {
		return mime
	}
	return fallbackAudioMime
}

// dataURI encodes data as an inline base64 data URI.
func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
