package providers

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
)

// Options selects and configures a transcription backend.
type Options struct {
	Provider string // fal, openai, groq or whisper-cli

	FalAPIKey       string
	FalModel        string
	FalQueueURL     string
	FalPollInterval time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GroqAPIKey string

	WhisperModel string
}

// NewTranscriptionProvider builds the backend named in opts. Audio is read from fs.
func NewTranscriptionProvider(fs afero.Fs, opts Options) (TranscriptionProvider, error) {
	switch opts.Provider {
	case "", "fal":
		return NewFalTranscriptionProvider(fs, opts.FalAPIKey, opts.FalModel, opts.FalQueueURL, opts.FalPollInterval), nil
	case "openai":
		return NewOpenAITranscriptionProvider(fs, opts.OpenAIBaseURL, opts.OpenAIAPIKey, opts.OpenAIModel), nil
	case "groq":
		return NewGroqTranscriptionProvider(fs, opts.GroqAPIKey), nil
	case "whisper-cli":
		if _, ok := fs.(*afero.OsFs); !ok {
			return nil, fmt.Errorf("whisper-cli needs the OS filesystem")
		}
		return NewWhisperCLITranscriptionProvider(opts.WhisperModel), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", opts.Provider)
	}
}
