package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv unsets every variable AppConfig reads and restores them afterwards.
func isolateEnv(t *testing.T) {
	t.Helper()
	typ := reflect.TypeOf(AppConfig{})
	for i := 0; i < typ.NumField(); i++ {
		key := strings.SplitN(typ.Field(i).Tag.Get("env"), ",", 2)[0]
		if key == "" {
			continue
		}
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func validConfig() AppConfig {
	return AppConfig{
		TelegramToken:         "123:abc",
		TelegramAllowedUsers:  "336979047",
		TranscriptionProvider: "fal",
		TranscriptionLanguage: "de",
		DefaultLanguage:       "en",
		FalAPIKey:             "fal-key",
		FalModel:              "fal-ai/wizper",
		FalQueueURL:           "https://queue.fal.run",
		FalPollInterval:       "500ms",
		OpenAIModel:           "whisper-1",
		WhisperModel:          "small",
		TempDir:               "temp",
		MaxDownloadSize:       "20MB",
		SweepSchedule:         "@every 15m",
		SweepMaxAge:           "1h",
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("FAL_API_KEY", "fal-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fal", cfg.TranscriptionProvider)
	assert.Equal(t, "de", cfg.TranscriptionLanguage)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, "temp", cfg.TempDir)
	assert.Equal(t, "@every 15m", cfg.SweepSchedule)
	assert.False(t, cfg.Debug)

	settings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 0, settings.AllowList.Len())
	assert.Equal(t, uint64(20_000_000), settings.MaxDownloadBytes)
	assert.Equal(t, 500*time.Millisecond, settings.Provider.FalPollInterval)
	assert.Equal(t, time.Hour, settings.SweepMaxAge)
}

func TestLoadFromEnvFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "TELEGRAM_BOT_TOKEN=from-file\nFAL_API_KEY=file-key\nTELEGRAM_ALLOWED_USER_IDS=1,2\nDEBUG=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FAL_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TelegramToken)
	assert.Equal(t, "from-env", cfg.FalAPIKey, "existing environment wins over the file")
	assert.True(t, cfg.Debug)

	settings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, settings.AllowList.IDs())
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	isolateEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*AppConfig)
		errorMsg string
		missing  bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing bot token", mutate: func(c *AppConfig) { c.TelegramToken = "" }, errorMsg: "TELEGRAM_BOT_TOKEN", missing: true},
		{name: "missing fal key", mutate: func(c *AppConfig) { c.FalAPIKey = "" }, errorMsg: "FAL_API_KEY", missing: true},
		{name: "openai without key", mutate: func(c *AppConfig) { c.TranscriptionProvider = "openai" }, errorMsg: "OPENAI_API_KEY", missing: true},
		{name: "openai local server", mutate: func(c *AppConfig) {
			c.TranscriptionProvider = "openai"
			c.OpenAIBaseURL = "http://localhost:8000/v1"
		}},
		{name: "groq without key", mutate: func(c *AppConfig) { c.TranscriptionProvider = "groq" }, errorMsg: "GROQ_API_KEY", missing: true},
		{name: "whisper cli needs no key", mutate: func(c *AppConfig) { c.TranscriptionProvider = "whisper-cli"; c.FalAPIKey = "" }},
		{name: "unknown provider", mutate: func(c *AppConfig) { c.TranscriptionProvider = "pigeon" }, errorMsg: "TRANSCRIPTION_PROVIDER"},
		{name: "bad allow list", mutate: func(c *AppConfig) { c.TelegramAllowedUsers = "1,x" }, errorMsg: "TELEGRAM_ALLOWED_USER_IDS"},
		{name: "empty language", mutate: func(c *AppConfig) { c.TranscriptionLanguage = " " }, errorMsg: "TRANSCRIPTION_LANGUAGE"},
		{name: "bad poll interval", mutate: func(c *AppConfig) { c.FalPollInterval = "soon" }, errorMsg: "FAL_POLL_INTERVAL"},
		{name: "bad size", mutate: func(c *AppConfig) { c.MaxDownloadSize = "huge" }, errorMsg: "MAX_DOWNLOAD_SIZE"},
		{name: "bad schedule", mutate: func(c *AppConfig) { c.SweepSchedule = "whenever" }, errorMsg: "SWEEP_SCHEDULE"},
		{name: "bad max age", mutate: func(c *AppConfig) { c.SweepMaxAge = "-1h" }, errorMsg: "SWEEP_MAX_AGE"},
		{name: "empty temp dir", mutate: func(c *AppConfig) { c.TempDir = "" }, errorMsg: "TEMP_DIR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			settings, err := cfg.Validate()
			if tt.errorMsg == "" {
				require.NoError(t, err)
				require.NotNil(t, settings)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.Equal(t, tt.missing, errorsIsMissing(err))
		})
	}
}

func TestValidateNormalizesProvider(t *testing.T) {
	cfg := validConfig()
	cfg.TranscriptionProvider = " FAL "
	cfg.TranscriptionLanguage = "DE"

	settings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, "fal", settings.Provider.Provider)
	assert.Equal(t, "de", settings.TranscriptionLanguage)
}

func TestSaveRoundTrip(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), ".env")

	cfg := validConfig()
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "TELEGRAM_BOT_TOKEN=")
	assert.NotContains(t, string(raw), "OPENAI_API_KEY=", "empty values are not written")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.TelegramToken, loaded.TelegramToken)
	assert.Equal(t, cfg.FalAPIKey, loaded.FalAPIKey)
	assert.Equal(t, cfg.TelegramAllowedUsers, loaded.TelegramAllowedUsers)
}

func errorsIsMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), ErrMissingCredentials.Error())
}
