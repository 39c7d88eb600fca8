package relay

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"voxrelay/pkg/access"
	"voxrelay/pkg/bus"
	"voxrelay/pkg/i18n"
	"voxrelay/pkg/logging"
	"voxrelay/pkg/media"
	"voxrelay/pkg/metrics"
	"voxrelay/pkg/providers"
	"voxrelay/pkg/storage"
	"voxrelay/pkg/textsplit"

	"github.com/dustin/go-humanize"
)

// ErrAccessDenied is logged when a sender is not on the allow-list.
var ErrAccessDenied = errors.New("access denied")

// Fetcher downloads a Telegram file into a local path.
type Fetcher interface {
	Fetch(ctx context.Context, fileID, dst string) (uint64, error)
}

// Handler turns one inbound message into zero or more outbound replies.
type Handler struct {
	gate        access.AllowList
	catalog     *i18n.Catalog
	language    string
	store       *storage.Store
	fetcher     Fetcher
	transcriber providers.TranscriptionProvider
	msgBus      *bus.MessageBus
	metrics     *metrics.Metrics
	chunkLimit  int
}

// Options wires the collaborators of a Handler.
type Options struct {
	AllowList   access.AllowList
	Catalog     *i18n.Catalog
	Language    string // transcription language hint
	Store       *storage.Store
	Fetcher     Fetcher
	Transcriber providers.TranscriptionProvider
	Bus         *bus.MessageBus
	Metrics     *metrics.Metrics
	ChunkLimit  int // 0 means textsplit.MaxMessageLength
}

// NewHandler creates a Handler. Catalog, Store, Fetcher, Transcriber, Bus and
// Metrics are required.
func NewHandler(opts Options) *Handler {
	limit := opts.ChunkLimit
	if limit <= 0 {
		limit = textsplit.MaxMessageLength
	}
	return &Handler{
		gate:        opts.AllowList,
		catalog:     opts.Catalog,
		language:    opts.Language,
		store:       opts.Store,
		fetcher:     opts.Fetcher,
		transcriber: opts.Transcriber,
		msgBus:      opts.Bus,
		metrics:     opts.Metrics,
		chunkLimit:  limit,
	}
}

// Handle processes msg end to end. It never returns an error: every failure
// becomes a localized reply to the sender.
func (h *Handler) Handle(ctx context.Context, msg bus.InboundMessage) {
	lang := h.catalog.Resolve(msg.LanguageCode)

	defer func() {
		if r := recover(); r != nil {
			logging.Error("💥 Handler panicked", "chat_id", msg.ChatID, "panic", r, "stack", string(debug.Stack()))
			h.metrics.Messages.WithLabelValues(metrics.OutcomeFailed).Inc()
			h.reply(msg, i18n.Text(i18n.ProcessingError, lang))
		}
	}()

	if !h.gate.Allows(msg.SenderID) {
		logging.Warn("🚫 Rejected sender", "sender_id", msg.SenderID, "err", ErrAccessDenied)
		h.metrics.Messages.WithLabelValues(metrics.OutcomeDenied).Inc()
		h.reply(msg, i18n.Text(i18n.NoPermission, lang, msg.SenderID))
		return
	}

	if msg.Command == "start" {
		h.metrics.Messages.WithLabelValues(metrics.OutcomeStart).Inc()
		h.reply(msg, i18n.Text(i18n.Start, lang))
		return
	}

	att, err := media.Classify(msg)
	if err != nil {
		// plain text and unknown commands land here too
		kind, mimeType := bus.KindNone, ""
		if msg.Attachment != nil {
			kind, mimeType = msg.Attachment.Kind, msg.Attachment.MimeType
		}
		logging.Info("🙅 Unsupported message", "chat_id", msg.ChatID, "kind", kind, "mime", mimeType, "command", msg.Command)
		h.metrics.Messages.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		h.reply(msg, i18n.Text(i18n.InvalidFormat, lang))
		return
	}

	transcript, err := h.transcribe(ctx, att)
	if err != nil {
		key, outcome := i18n.ProcessingError, metrics.OutcomeFailed
		if providers.IsFormatRejected(err) {
			key, outcome = i18n.InvalidFormat, metrics.OutcomeInvalidInput
		}
		logging.Error("❌ Transcription failed", "chat_id", msg.ChatID, "file_id", att.FileID, "err", err)
		h.metrics.Messages.WithLabelValues(outcome).Inc()
		h.reply(msg, i18n.Text(key, lang))
		return
	}

	chunks := textsplit.Split(transcript.Text, h.chunkLimit)
	for _, chunk := range chunks {
		h.reply(msg, chunk)
	}
	h.metrics.Messages.WithLabelValues(metrics.OutcomeTranscribed).Inc()
	logging.Info("✅ Transcribed", "chat_id", msg.ChatID, "segments", len(transcript.Segments), "replies", len(chunks))
}

// transcribe downloads att into a leased transient file and sends it to the
// transcription service. The file is gone when transcribe returns, whatever
// the outcome, panics included.
func (h *Handler) transcribe(ctx context.Context, att bus.Attachment) (*providers.Transcript, error) {
	lease, err := h.store.Acquire()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lease.Release(); err != nil {
			logging.Error("🗑️ Failed to delete transient file", "path", lease.Path, "err", err)
		}
	}()

	n, err := h.fetcher.Fetch(ctx, att.FileID, lease.Path)
	if err != nil {
		return nil, err
	}
	h.metrics.DownloadedBytes.Add(float64(n))
	logging.Debug("🎙️ Sending audio for transcription", "provider", h.transcriber.Name(), "size", humanize.Bytes(n))

	started := time.Now()
	transcript, err := h.transcriber.Transcribe(ctx, providers.TranscriptionRequest{
		AudioPath: lease.Path,
		Language:  h.language,
	})
	h.metrics.TranscriptionDuration.Observe(time.Since(started).Seconds())

	result := "ok"
	if err != nil {
		result = providers.KindOf(err).String()
	}
	h.metrics.Transcriptions.WithLabelValues(h.transcriber.Name(), result).Inc()

	if err != nil {
		return nil, fmt.Errorf("%s transcription: %w", h.transcriber.Name(), err)
	}
	return transcript, nil
}

func (h *Handler) reply(msg bus.InboundMessage, content string) {
	h.msgBus.SendOutbound(bus.OutboundMessage{
		Channel:          msg.Channel,
		ChatID:           msg.ChatID,
		ReplyToMessageID: msg.MessageID,
		Content:          content,
	})
	h.metrics.RepliesSent.Inc()
}
