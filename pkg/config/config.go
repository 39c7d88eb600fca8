package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"voxrelay/pkg/access"
	"voxrelay/pkg/providers"

	env "github.com/Netflix/go-env"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// DefaultEnvFile is read at startup and written by the configure wizard.
const DefaultEnvFile = ".env"

// AppConfig holds the raw settings as they appear in the environment.
type AppConfig struct {
	TelegramToken         string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAllowedUsers  string `env:"TELEGRAM_ALLOWED_USER_IDS"` // comma-separated, empty = everyone
	TranscriptionProvider string `env:"TRANSCRIPTION_PROVIDER,default=fal"`
	TranscriptionLanguage string `env:"TRANSCRIPTION_LANGUAGE,default=de"`
	DefaultLanguage       string `env:"DEFAULT_LANGUAGE,default=en"` // reply language fallback

	FalAPIKey       string `env:"FAL_API_KEY"`
	FalModel        string `env:"FAL_MODEL,default=fal-ai/wizper"`
	FalQueueURL     string `env:"FAL_QUEUE_URL,default=https://queue.fal.run"`
	FalPollInterval string `env:"FAL_POLL_INTERVAL,default=500ms"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL,default=whisper-1"`
	GroqAPIKey    string `env:"GROQ_API_KEY"`
	WhisperModel  string `env:"WHISPER_MODEL,default=small"`

	TempDir         string `env:"TEMP_DIR,default=temp"`
	MaxDownloadSize string `env:"MAX_DOWNLOAD_SIZE,default=20MB"`
	SweepSchedule   string `env:"SWEEP_SCHEDULE,default=@every 15m"`
	SweepMaxAge     string `env:"SWEEP_MAX_AGE,default=1h"`
	MetricsAddr     string `env:"METRICS_ADDR"`
	Debug           bool   `env:"DEBUG,default=false"`
}

// Settings is the validated, immutable configuration handed to the relay.
type Settings struct {
	TelegramToken         string
	AllowList             access.AllowList
	TranscriptionLanguage string
	DefaultLanguage       string
	Provider              providers.Options
	TempDir               string
	MaxDownloadBytes      uint64
	SweepSchedule         string
	SweepMaxAge           time.Duration
	MetricsAddr           string
	Debug                 bool
}

// ErrMissingCredentials is returned when a required token or API key is absent.
var ErrMissingCredentials = errors.New("missing credentials")

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then decodes the environment.
func Load(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg AppConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the raw configuration and converts it into Settings.
func (cfg *AppConfig) Validate() (*Settings, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN is not set", ErrMissingCredentials)
	}

	allow, err := access.ParseAllowList(cfg.TelegramAllowedUsers)
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.TranscriptionProvider))
	if provider == "" {
		provider = "fal"
	}
	switch provider {
	case "fal":
		if cfg.FalAPIKey == "" {
			return nil, fmt.Errorf("%w: FAL_API_KEY is required for the fal provider", ErrMissingCredentials)
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required unless OPENAI_BASE_URL points at a local server", ErrMissingCredentials)
		}
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY is required for the groq provider", ErrMissingCredentials)
		}
	case "whisper-cli":
	default:
		return nil, fmt.Errorf("TRANSCRIPTION_PROVIDER must be one of fal, openai, groq, whisper-cli, got %q", cfg.TranscriptionProvider)
	}

	lang := strings.ToLower(strings.TrimSpace(cfg.TranscriptionLanguage))
	if lang == "" {
		return nil, fmt.Errorf("TRANSCRIPTION_LANGUAGE cannot be empty")
	}

	pollInterval, err := time.ParseDuration(cfg.FalPollInterval)
	if err != nil || pollInterval <= 0 {
		return nil, fmt.Errorf("FAL_POLL_INTERVAL must be a positive duration, got %q", cfg.FalPollInterval)
	}

	maxBytes, err := humanize.ParseBytes(cfg.MaxDownloadSize)
	if err != nil || maxBytes == 0 {
		return nil, fmt.Errorf("MAX_DOWNLOAD_SIZE must be a size such as 20MB, got %q", cfg.MaxDownloadSize)
	}

	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		return nil, fmt.Errorf("SWEEP_SCHEDULE %q: %w", cfg.SweepSchedule, err)
	}
	sweepMaxAge, err := time.ParseDuration(cfg.SweepMaxAge)
	if err != nil || sweepMaxAge <= 0 {
		return nil, fmt.Errorf("SWEEP_MAX_AGE must be a positive duration, got %q", cfg.SweepMaxAge)
	}

	if strings.TrimSpace(cfg.TempDir) == "" {
		return nil, fmt.Errorf("TEMP_DIR cannot be empty")
	}

	return &Settings{
		TelegramToken:         cfg.TelegramToken,
		AllowList:             allow,
		TranscriptionLanguage: lang,
		DefaultLanguage:       cfg.DefaultLanguage,
		Provider: providers.Options{
			Provider:        provider,
			FalAPIKey:       cfg.FalAPIKey,
			FalModel:        cfg.FalModel,
			FalQueueURL:     cfg.FalQueueURL,
			FalPollInterval: pollInterval,
			OpenAIAPIKey:    cfg.OpenAIAPIKey,
			OpenAIBaseURL:   cfg.OpenAIBaseURL,
			OpenAIModel:     cfg.OpenAIModel,
			GroqAPIKey:      cfg.GroqAPIKey,
			WhisperModel:    cfg.WhisperModel,
		},
		TempDir:          cfg.TempDir,
		MaxDownloadBytes: maxBytes,
		SweepSchedule:    cfg.SweepSchedule,
		SweepMaxAge:      sweepMaxAge,
		MetricsAddr:      cfg.MetricsAddr,
		Debug:            cfg.Debug,
	}, nil
}

// Save writes the non-empty settings to path as a dotenv file.
func (cfg *AppConfig) Save(path string) error {
	set, err := env.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	values := make(map[string]string, len(set))
	for k, v := range set {
		if v != "" {
			values[k] = v
		}
	}

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("failed to write config to disk: %w", err)
	}
	// it holds API keys (rw-------)
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	return nil
}
