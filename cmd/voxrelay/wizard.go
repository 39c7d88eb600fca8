package main

import (
	"errors"
	"fmt"
	"strings"

	"voxrelay/pkg/access"
	"voxrelay/pkg/config"
	"voxrelay/pkg/logging"
	"voxrelay/pkg/storage"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var providerChoices = []string{"fal", "openai", "groq", "whisper-cli"}

func newConfigureCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactively write the dotenv settings file.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigure(*envFile)
		},
	}
}

func newPurgeCommand(envFile *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every file left in the transient audio directory.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runPurge(*envFile, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		return nil
	}
}

func ask(label, def string, validate promptui.ValidateFunc, secret bool) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	if secret {
		p.Mask = '*'
	}
	v, err := p.Run()
	return strings.TrimSpace(v), err
}

func runConfigure(envFile string) error {
	fmt.Println("🎙️ voxrelay Configuration Wizard")
	fmt.Println("--------------------------------")

	// start from whatever is already there so re-running only edits
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if cfg.TelegramToken, err = ask("Telegram Bot Token", cfg.TelegramToken, required("token"), true); err != nil {
		return err
	}
	if cfg.TelegramAllowedUsers, err = ask("Allowed Telegram user IDs (comma-separated, empty for everyone)", cfg.TelegramAllowedUsers, func(s string) error {
		_, err := access.ParseAllowList(s)
		return err
	}, false); err != nil {
		return err
	}

	sel := promptui.Select{Label: "Transcription provider", Items: providerChoices}
	if _, cfg.TranscriptionProvider, err = sel.Run(); err != nil {
		return err
	}

	switch cfg.TranscriptionProvider {
	case "fal":
		if cfg.FalAPIKey, err = ask("fal.ai API Key", cfg.FalAPIKey, required("API key"), true); err != nil {
			return err
		}
	case "openai":
		if cfg.OpenAIBaseURL, err = ask("OpenAI-compatible base URL (empty for api.openai.com)", cfg.OpenAIBaseURL, nil, false); err != nil {
			return err
		}
		if cfg.OpenAIAPIKey, err = ask("OpenAI API Key", cfg.OpenAIAPIKey, nil, true); err != nil {
			return err
		}
		if cfg.OpenAIModel, err = ask("Model", cfg.OpenAIModel, required("model"), false); err != nil {
			return err
		}
	case "groq":
		if cfg.GroqAPIKey, err = ask("Groq API Key", cfg.GroqAPIKey, required("API key"), true); err != nil {
			return err
		}
	case "whisper-cli":
		if cfg.WhisperModel, err = ask("Whisper model", cfg.WhisperModel, required("model"), false); err != nil {
			return err
		}
	}

	if cfg.TranscriptionLanguage, err = ask("Transcription language (ISO 639-1)", cfg.TranscriptionLanguage, required("language"), false); err != nil {
		return err
	}

	if _, err := cfg.Validate(); err != nil {
		fmt.Printf("❌ These settings are not usable: %v\n", err)
		return err
	}

	if err := cfg.Save(envFile); err != nil {
		return err
	}
	fmt.Printf("✅ Configuration saved successfully to %s!\n", envFile)
	fmt.Println("You can now run 'voxrelay' to start the bot.")
	return nil
}

func runPurge(envFile string, yes bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	store := storage.NewStore(afero.NewOsFs(), cfg.TempDir)

	if !yes {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("🗑️ Delete every transient audio file in %s", store.Dir()),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Println("Purge cancelled.")
				return nil
			}
			return err
		}
	}

	removed, err := store.Purge()
	if err != nil {
		return err
	}
	logging.Info("✅ Transient directory purged", "dir", store.Dir(), "removed", removed)
	return nil
}
