package media

import (
	"errors"
	"mime"
	"strings"

	"voxrelay/pkg/bus"
)

// ErrUnsupportedFormat is returned for messages that carry no transcribable audio.
var ErrUnsupportedFormat = errors.New("unsupported attachment format")

// Document MIME types accepted as audio.
const (
	MimeMPEG = "audio/mpeg"
	MimeWAV  = "audio/wav"
)

var acceptedDocumentTypes = map[string]bool{
	MimeMPEG: true,
	MimeWAV:  true,
}

// Classify returns the attachment to transcribe, or ErrUnsupportedFormat.
// Voice clips and audio files are always accepted; documents only when they
// declare an accepted audio MIME type.
func Classify(msg bus.InboundMessage) (bus.Attachment, error) {
	att := msg.Attachment
	if att == nil || att.FileID == "" {
		return bus.Attachment{}, ErrUnsupportedFormat
	}

	switch att.Kind {
	case bus.KindVoice, bus.KindAudio:
		return *att, nil
	case bus.KindDocument:
		if acceptedDocumentTypes[normalizeMime(att.MimeType)] {
			return *att, nil
		}
	}
	return bus.Attachment{}, ErrUnsupportedFormat
}

func normalizeMime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return mediaType
}
