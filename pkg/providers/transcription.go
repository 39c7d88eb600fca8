package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TranscriptionRequest describes one audio file to transcribe.
type TranscriptionRequest struct {
	AudioPath string
	Language  string // ISO 639-1 hint such as "de"
}

// Transcript is the ordered list of segments returned by a service.
type Transcript struct {
	Segments []string
	Text     string
}

// TranscriptionProvider defines the interface for audio-to-text transcription.
type TranscriptionProvider interface {
	// Transcribe blocks until the service returns a final result or fails.
	Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcript, error)
	Name() string
}

// FailureKind classifies why a transcription failed.
type FailureKind int

const (
	// FailureTransport covers network errors, timeouts and unexpected statuses.
	FailureTransport FailureKind = iota
	// FailureFormatRejected means the service could not process the audio.
	FailureFormatRejected
	// FailureShapeMismatch means the service answered without usable segments.
	FailureShapeMismatch
)

func (k FailureKind) String() string {
	switch k {
	case FailureFormatRejected:
		return "format_rejected"
	case FailureShapeMismatch:
		return "shape_mismatch"
	default:
		return "transport"
	}
}

// TranscriptionError is returned by every provider on failure.
type TranscriptionError struct {
	Kind       FailureKind
	Provider   string
	StatusCode int // 0 when no HTTP status was involved
	Err        error
}

func (e *TranscriptionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transcription %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s transcription %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

func newTransportError(provider string, status int, err error) *TranscriptionError {
	return &TranscriptionError{Kind: FailureTransport, Provider: provider, StatusCode: status, Err: err}
}

func newFormatError(provider string, status int, err error) *TranscriptionError {
	return &TranscriptionError{Kind: FailureFormatRejected, Provider: provider, StatusCode: status, Err: err}
}

func newShapeError(provider string, err error) *TranscriptionError {
	return &TranscriptionError{Kind: FailureShapeMismatch, Provider: provider, Err: err}
}

// KindOf returns the failure kind of err. Errors that are not a
// TranscriptionError count as transport failures.
func KindOf(err error) FailureKind {
	var te *TranscriptionError
	if errors.As(err, &te) {
		return te.Kind
	}
	return FailureTransport
}

// IsFormatRejected reports whether the service refused the audio itself.
func IsFormatRejected(err error) bool {
	var te *TranscriptionError
	return errors.As(err, &te) && te.Kind == FailureFormatRejected
}

// IsShapeMismatch reports whether the service returned no usable text.
func IsShapeMismatch(err error) bool {
	var te *TranscriptionError
	return errors.As(err, &te) && te.Kind == FailureShapeMismatch
}

// joinSegments trims every segment and joins them with single spaces. Zero
// segments or an all-blank result is a shape mismatch.
func joinSegments(provider string, raw []string) (*Transcript, error) {
	if len(raw) == 0 {
		return nil, newShapeError(provider, errors.New("no transcription segments in response"))
	}

	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil, newShapeError(provider, errors.New("all transcription segments are blank"))
	}

	return &Transcript{
		Segments: segments,
		Text:     strings.Join(segments, " "),
	}, nil
}
