package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"voxrelay/pkg/logging"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
)

// OpenAITranscriptionProvider implements TranscriptionProvider for OpenAI-compatible APIs (including local ones).
type OpenAITranscriptionProvider struct {
	NameStr string
	BaseURL string
	Model   string

	client *openai.Client
	fs     afero.Fs
}

// NewOpenAITranscriptionProvider creates a new OpenAI transcription provider.
func NewOpenAITranscriptionProvider(fs afero.Fs, baseURL, apiKey, model string) *OpenAITranscriptionProvider {
	return newOpenAICompatible(fs, "openai", baseURL, apiKey, model, &http.Client{})
}

func newOpenAICompatible(fs afero.Fs, name, baseURL, apiKey, model string, httpClient *http.Client) *OpenAITranscriptionProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = openai.Whisper1
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = httpClient

	return &OpenAITranscriptionProvider{
		NameStr: name,
		BaseURL: cfg.BaseURL,
		Model:   model,
		client:  openai.NewClientWithConfig(cfg),
		fs:      fs,
	}
}

func (p *OpenAITranscriptionProvider) Name() string {
	return p.NameStr
}

func (p *OpenAITranscriptionProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcript, error) {
	data, mime, err := readAudio(p.fs, req.AudioPath)
	if err != nil {
		return nil, newTransportError(p.Name(), 0, err)
	}

	logging.Debug("🎙️ Transcribing via OpenAI-compatible API", "provider", p.Name(), "base_url", p.BaseURL, "model", p.Model)
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.Model,
		FilePath: "audio" + extensionFor(mime),
		Reader:   bytes.NewReader(data),
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, p.classify(err)
	}

	texts := make([]string, len(resp.Segments))
	for i, s := range resp.Segments {
		texts[i] = s.Text
	}
	return joinSegments(p.Name(), texts)
}

// classify maps go-openai errors onto the failure kinds. OpenAI answers 400 for
// undecodable audio, other compatible servers use 422.
func (p *OpenAITranscriptionProvider) classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return newFormatError(p.Name(), status, err)
	}
	return newTransportError(p.Name(), status, fmt.Errorf("transcription request failed: %w", err))
}

func extensionFor(mime string) string {
	switch mime {
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/webm":
		return ".webm"
	default:
		return ".mp3"
	}
}
