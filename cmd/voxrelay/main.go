package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"voxrelay/pkg/bus"
	"voxrelay/pkg/channels/telegram"
	"voxrelay/pkg/config"
	"voxrelay/pkg/download"
	"voxrelay/pkg/i18n"
	"voxrelay/pkg/logging"
	"voxrelay/pkg/metrics"
	"voxrelay/pkg/providers"
	"voxrelay/pkg/relay"
	"voxrelay/pkg/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "voxrelay",
		Short: "Telegram bot that turns voice messages into text.",
		Long: `voxrelay listens for voice messages, audio files and MP3/WAV documents on Telegram,
hands them to a speech-to-text service and replies with the transcript. Audio is kept
on disk only while it is being transcribed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "dotenv file to read settings from")

	rootCmd.AddCommand(newConfigureCommand(&envFile))
	rootCmd.AddCommand(newPurgeCommand(&envFile))
	return rootCmd
}

func loadSettings(envFile string) (*config.Settings, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	return cfg.Validate()
}

func runBot(parent context.Context, envFile string) error {
	settings, err := loadSettings(envFile)
	if err != nil {
		logging.Error("⚠️ Invalid configuration. Run 'voxrelay configure' or set the environment", "err", err)
		return err
	}
	logging.SetOutput(os.Stderr, settings.Debug)
	logging.Info("🎙️ Starting voxrelay", "provider", settings.Provider.Provider, "language", settings.TranscriptionLanguage, "allowed_users", settings.AllowList)

	catalog, err := i18n.NewCatalog(settings.DefaultLanguage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	fs := afero.NewOsFs()
	store := storage.NewStore(fs, settings.TempDir)
	if err := storage.NewSweeper(store, settings.SweepSchedule, settings.SweepMaxAge).Start(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)
	if settings.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, settings.MetricsAddr, registry); err != nil {
				logging.Error("❌ Metrics server stopped", "err", err)
			}
		}()
	}

	transcriber, err := providers.NewTranscriptionProvider(fs, settings.Provider)
	if err != nil {
		return err
	}
	logging.Info("🤖 Transcription provider ready", "name", transcriber.Name())

	msgBus := bus.NewMessageBus()
	tgChannel := telegram.NewChannel(settings.TelegramToken, msgBus)

	handler := relay.NewHandler(relay.Options{
		AllowList:   settings.AllowList,
		Catalog:     catalog,
		Language:    settings.TranscriptionLanguage,
		Store:       store,
		Fetcher:     download.NewAcquirer(fs, tgChannel, nil, settings.MaxDownloadBytes),
		Transcriber: transcriber,
		Bus:         msgBus,
		Metrics:     m,
	})

	if err := tgChannel.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Telegram channel: %w", err)
	}
	logging.Info("✅ Telegram channel started successfully. Listening for messages...")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case inMsg := <-msgBus.Inbound:
				logging.Debug("📩 Received message", "sender_id", inMsg.SenderID, "chat_id", inMsg.ChatID, "command", inMsg.Command)
				go handler.Handle(ctx, inMsg)

			case outMsg := <-msgBus.Outbound:
				if outMsg.Channel != telegram.ChannelName {
					continue
				}
				if err := tgChannel.SendMessage(ctx, outMsg.ChatID, outMsg.ReplyToMessageID, outMsg.Content); err != nil {
					logging.Error("❌ Failed to send Telegram message", "chat_id", outMsg.ChatID, "err", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logging.Info("Shutting down voxrelay...")
	return nil
}

func main() {
	logging.CreateLogger()

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logging.Fatal("voxrelay exited", "err", err)
	}
}
