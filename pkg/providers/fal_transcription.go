package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxrelay/pkg/logging"

	"github.com/spf13/afero"
)

const (
	DefaultFalQueueURL = "https://queue.fal.run"
	DefaultFalModel    = "fal-ai/wizper"
)

// fal queue states
const (
	falInQueue    = "IN_QUEUE"
	falInProgress = "IN_PROGRESS"
	falCompleted  = "COMPLETED"
)

// FalTranscriptionProvider submits audio to a fal.ai speech model through the
// queue API and polls until the job completes.
type FalTranscriptionProvider struct {
	APIKey       string
	Model        string
	QueueURL     string
	PollInterval time.Duration
	HTTPClient   *http.Client

	fs afero.Fs
}

// NewFalTranscriptionProvider creates a fal.ai provider that reads audio from fs.
func NewFalTranscriptionProvider(fs afero.Fs, apiKey, model, queueURL string, pollInterval time.Duration) *FalTranscriptionProvider {
	if model == "" {
		model = DefaultFalModel
	}
	if queueURL == "" {
		queueURL = DefaultFalQueueURL
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &FalTranscriptionProvider{
		APIKey:       apiKey,
		Model:        strings.Trim(model, "/"),
		QueueURL:     strings.TrimSuffix(queueURL, "/"),
		PollInterval: pollInterval,
		HTTPClient:   &http.Client{},
		fs:           fs,
	}
}

func (p *FalTranscriptionProvider) Name() string {
	return "fal"
}

type falInput struct {
	AudioURL   string `json:"audio_url"`
	Language   string `json:"language,omitempty"`
	Task       string `json:"task"`
	ChunkLevel string `json:"chunk_level"`
}

type falSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type falStatusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	ResponseURL   string `json:"response_url"`
	Error         string `json:"error,omitempty"`
	Logs          []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

type falResult struct {
	Text   string `json:"text"`
	Chunks []struct {
		Text      string    `json:"text"`
		Timestamp []float64 `json:"timestamp"`
	} `json:"chunks"`
}

func (p *FalTranscriptionProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcript, error) {
	data, mime, err := readAudio(p.fs, req.AudioPath)
	if err != nil {
		return nil, newTransportError(p.Name(), 0, err)
	}

	submitted, err := p.submit(ctx, falInput{
		AudioURL:   dataURI(mime, data),
		Language:   req.Language,
		Task:       "transcribe",
		ChunkLevel: "segment",
	})
	if err != nil {
		return nil, err
	}

	responseURL, err := p.waitForCompletion(ctx, submitted)
	if err != nil {
		return nil, err
	}

	var result falResult
	if err := p.getJSON(ctx, responseURL, &result); err != nil {
		return nil, err
	}

	texts := make([]string, len(result.Chunks))
	for i, c := range result.Chunks {
		texts[i] = c.Text
	}
	return joinSegments(p.Name(), texts)
}

func (p *FalTranscriptionProvider) submit(ctx context.Context, input falInput) (*falSubmitResponse, error) {
	bodyBytes, err := json.Marshal(input)
	if err != nil {
		return nil, newTransportError(p.Name(), 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.QueueURL+"/"+p.Model, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, newTransportError(p.Name(), 0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out falSubmitResponse
	if err := p.doJSON(httpReq, &out); err != nil {
		return nil, err
	}
	if out.RequestID == "" && out.StatusURL == "" {
		return nil, newShapeError(p.Name(), errors.New("queue response has neither request_id nor status_url"))
	}
	if out.StatusURL == "" {
		out.StatusURL = p.requestURL(out.RequestID) + "/status"
	}
	if out.ResponseURL == "" {
		out.ResponseURL = p.requestURL(out.RequestID)
	}
	logging.Debug("🎙️ Submitted audio to fal", "model", p.Model, "request_id", out.RequestID)
	return &out, nil
}

// waitForCompletion polls the status URL until the job is done and returns the
// URL holding the result. Queue logs are only logged.
func (p *FalTranscriptionProvider) waitForCompletion(ctx context.Context, job *falSubmitResponse) (string, error) {
	statusURL := job.StatusURL
	if !strings.Contains(statusURL, "?") {
		statusURL += "?logs=1"
	}

	for {
		var status falStatusResponse
		if err := p.getJSON(ctx, statusURL, &status); err != nil {
			return "", err
		}

		switch status.Status {
		case falCompleted:
			if status.Error != "" {
				return "", newTransportError(p.Name(), 0, fmt.Errorf("job failed: %s", status.Error))
			}
			if status.ResponseURL != "" {
				return status.ResponseURL, nil
			}
			return job.ResponseURL, nil
		case falInQueue:
			logging.Debug("🎙️ fal job queued", "request_id", job.RequestID, "position", status.QueuePosition)
		case falInProgress:
			for _, l := range status.Logs {
				logging.Debug("🎙️ fal", "request_id", job.RequestID, "log", l.Message)
			}
		default:
			return "", newShapeError(p.Name(), fmt.Errorf("unknown queue status %q", status.Status))
		}

		timer := time.NewTimer(p.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", newTransportError(p.Name(), 0, ctx.Err())
		case <-timer.C:
		}
	}
}

func (p *FalTranscriptionProvider) requestURL(requestID string) string {
	return p.QueueURL + "/" + p.Model + "/requests/" + requestID
}

func (p *FalTranscriptionProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return newTransportError(p.Name(), 0, fmt.Errorf("failed to create request: %w", err))
	}
	return p.doJSON(httpReq, out)
}

func (p *FalTranscriptionProvider) doJSON(httpReq *http.Request, out interface{}) error {
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Key "+p.APIKey)

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return newTransportError(p.Name(), 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("fal API error: %s", strings.TrimSpace(string(respBody)))
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return newFormatError(p.Name(), resp.StatusCode, apiErr)
		}
		return newTransportError(p.Name(), resp.StatusCode, apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newShapeError(p.Name(), fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
