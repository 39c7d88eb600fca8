package bus

// AttachmentKind tells which Telegram field an attachment came from.
type AttachmentKind string

const (
	KindNone     AttachmentKind = ""
	KindVoice    AttachmentKind = "voice"
	KindAudio    AttachmentKind = "audio"
	KindDocument AttachmentKind = "document"
)

// Attachment is the media carried by an inbound message.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	MimeType string // declared by the sender, may be empty
	FileName string
	FileSize int
}

// InboundMessage represents a message received from a channel (e.g., Telegram)
type InboundMessage struct {
	Channel      string
	SenderID     int64
	ChatID       int64
	MessageID    int // Message ID of the incoming message
	LanguageCode string
	Command      string // bot command without the slash, e.g. "start"
	Attachment   *Attachment
}

// OutboundMessage represents a message to be sent to a channel
type OutboundMessage struct {
	Channel          string
	ChatID           int64
	ReplyToMessageID int
	Content          string
}

// MessageBus routes messages between channels and the relay
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage
}

// NewMessageBus creates a new initialized MessageBus
func NewMessageBus() *MessageBus {
	return &MessageBus{
		Inbound:  make(chan InboundMessage, 100),
		Outbound: make(chan OutboundMessage, 100),
	}
}

func (b *MessageBus) SendInbound(msg InboundMessage) {
	b.Inbound <- msg
}

func (b *MessageBus) SendOutbound(msg OutboundMessage) {
	b.Outbound <- msg
}
