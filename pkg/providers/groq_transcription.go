package providers

import (
	"net/http"

	"github.com/spf13/afero"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "whisper-large-v3"
)

// NewGroqTranscriptionProvider creates a provider for Groq's Whisper API, which
// speaks the OpenAI transcription protocol.
func NewGroqTranscriptionProvider(fs afero.Fs, apiKey string) *OpenAITranscriptionProvider {
	return newOpenAICompatible(fs, "groq", groqBaseURL, apiKey, groqModel, &http.Client{})
}
