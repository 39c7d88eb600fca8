package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"voxrelay/pkg/logging"
)

// WhisperCLITranscriptionProvider implements TranscriptionProvider using the local whisper CLI.
// It needs the audio on the real filesystem.
type WhisperCLITranscriptionProvider struct {
	Model  string
	Binary string
}

// NewWhisperCLITranscriptionProvider creates a new Whisper CLI transcription provider.
func NewWhisperCLITranscriptionProvider(model string) *WhisperCLITranscriptionProvider {
	if model == "" {
		model = "small"
	}
	return &WhisperCLITranscriptionProvider{
		Model:  model,
		Binary: "whisper",
	}
}

func (p *WhisperCLITranscriptionProvider) Name() string {
	return "whisper-cli"
}

func (p *WhisperCLITranscriptionProvider) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcript, error) {
	tmpDir, err := os.MkdirTemp("", "whisper_out_*")
	if err != nil {
		return nil, newTransportError(p.Name(), 0, fmt.Errorf("failed to create temp dir for whisper: %w", err))
	}
	defer os.RemoveAll(tmpDir)

	// whisper <audioPath> --model <model> --output_dir <tmpDir> --output_format txt [--language xx]
	args := []string{
		req.AudioPath,
		"--model", p.Model,
		"--output_dir", tmpDir,
		"--output_format", "txt",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}

	logging.Debug("🎙️ Running Whisper CLI", "cmd", p.Binary+" "+strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, newTransportError(p.Name(), 0, fmt.Errorf("whisper CLI failed: %w\nOutput: %s", err, string(output)))
	}

	// Whisper creates <audio_filename>.txt
	base := filepath.Base(req.AudioPath)
	txtFile := filepath.Join(tmpDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")

	content, err := os.ReadFile(txtFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newShapeError(p.Name(), fmt.Errorf("whisper produced no transcript file"))
		}
		return nil, newTransportError(p.Name(), 0, fmt.Errorf("failed to read whisper output file: %w", err))
	}

	return joinSegments(p.Name(), strings.Split(string(content), "\n"))
}
