package telegram

import (
	"context"
	"fmt"

	"voxrelay/pkg/bus"
	"voxrelay/pkg/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChannelName tags messages that come from or go to Telegram.
const ChannelName = "telegram"

// Channel represents the Telegram integration
type Channel struct {
	bot   *tgbotapi.BotAPI
	bus   *bus.MessageBus
	token string
}

// NewChannel creates a new Telegram channel
func NewChannel(token string, messageBus *bus.MessageBus) *Channel {
	return &Channel{
		token: token,
		bus:   messageBus,
	}
}

// Start connects to Telegram and begins listening for messages
func (t *Channel) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("failed to init bot: %w", err)
	}
	t.bot = bot
	logging.Info("🤖 Authorized on Telegram", "account", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := InboundFromUpdate(update)
				if !ok {
					continue
				}
				t.bus.SendInbound(msg)
			}
		}
	}()

	return nil
}

// InboundFromUpdate converts a Telegram update into a bus message. Updates
// without a message or sender are skipped.
func InboundFromUpdate(update tgbotapi.Update) (bus.InboundMessage, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return bus.InboundMessage{}, false
	}

	msg := bus.InboundMessage{
		Channel:      ChannelName,
		SenderID:     m.From.ID,
		ChatID:       m.Chat.ID,
		MessageID:    m.MessageID,
		LanguageCode: m.From.LanguageCode,
		Attachment:   attachmentOf(m),
	}
	if m.IsCommand() {
		msg.Command = m.Command()
	}
	return msg, true
}

func attachmentOf(m *tgbotapi.Message) *bus.Attachment {
	switch {
	case m.Voice != nil:
		return &bus.Attachment{
			Kind:     bus.KindVoice,
			FileID:   m.Voice.FileID,
			MimeType: m.Voice.MimeType,
			FileSize: m.Voice.FileSize,
		}
	case m.Audio != nil:
		return &bus.Attachment{
			Kind:     bus.KindAudio,
			FileID:   m.Audio.FileID,
			MimeType: m.Audio.MimeType,
			FileName: m.Audio.FileName,
			FileSize: m.Audio.FileSize,
		}
	case m.Document != nil:
		return &bus.Attachment{
			Kind:     bus.KindDocument,
			FileID:   m.Document.FileID,
			MimeType: m.Document.MimeType,
			FileName: m.Document.FileName,
			FileSize: m.Document.FileSize,
		}
	}
	return nil
}

// ResolveFileURL returns a temporary direct download URL for fileID.
func (t *Channel) ResolveFileURL(fileID string) (string, error) {
	if t.bot == nil {
		return "", fmt.Errorf("telegram channel not started")
	}
	return t.bot.GetFileDirectURL(fileID)
}

// SendMessage sends a response back to the Telegram chat
func (t *Channel) SendMessage(ctx context.Context, chatID int64, replyTo int, content string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram channel not started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, content)
	msg.ReplyToMessageID = replyTo
	_, err := t.bot.Send(msg)
	return err
}
