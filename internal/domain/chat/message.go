package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"riderlink/internal/domain/participant"
)

const (
	// MaxContentLength bounds message content in characters.
	MaxContentLength = 5000
)

var (
	ErrMessageNotFound  = errors.New("chat: message not found")
	ErrContentRequired  = errors.New("chat: message content is required")
	ErrContentTooLong   = errors.New("chat: message content exceeds 5000 characters")
	ErrInvalidMessageID = errors.New("chat: invalid message id")
)

// MessageType describes the payload kind.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// ParseMessageType defaults to text for empty input.
func ParseMessageType(raw string) (MessageType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text":
		return MessageText, nil
	case "image":
		return MessageImage, nil
	case "file":
		return MessageFile, nil
	default:
		return "", errors.New("chat: invalid message type")
	}
}

// ReadReceipt marks a message as seen by a participant.
type ReadReceipt struct {
	UserID   string
	UserType participant.UserType
	ReadAt   time.Time
}

// Message belongs to a conversation. ReadBy holds at most one receipt per
// (userID, userType) regardless of how many times mark-read runs.
type Message struct {
	ID             string
	ConversationID string
	Sender         participant.Participant
	Content        string
	Type           MessageType
	ReadBy         []ReadReceipt
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MessageParams feed NewMessage.
type MessageParams struct {
	ID             string
	ConversationID string
	Sender         participant.Participant
	Content        string
	Type           MessageType
	Now            time.Time
}

// NewMessage validates content length in [1, MaxContentLength] characters.
func NewMessage(params MessageParams) (*Message, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, errors.New("chat: message id is required")
	}
	if strings.TrimSpace(params.ConversationID) == "" {
		return nil, ErrConversationNotFound
	}
	if params.Content == "" {
		return nil, ErrContentRequired
	}
	if utf8.RuneCountInString(params.Content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	messageType := params.Type
	if messageType == "" {
		messageType = MessageText
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		Sender:         params.Sender,
		Content:        params.Content,
		Type:           messageType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ReadByParticipant reports whether p already has a receipt on the message.
func (m *Message) ReadByParticipant(p participant.Participant) bool {
	for _, receipt := range m.ReadBy {
		if receipt.UserID == p.UserID && receipt.UserType == p.UserType {
			return true
		}
	}
	return false
}

// MarkReadBy appends a receipt once. Re-marking is a no-op and returns false.
func (m *Message) MarkReadBy(p participant.Participant, at time.Time) bool {
	if m.ReadByParticipant(p) {
		return false
	}
	if at.IsZero() {
		at = time.Now()
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{UserID: p.UserID, UserType: p.UserType, ReadAt: at.UTC()})
	m.UpdatedAt = at.UTC()
	return true
}

// UnreadForParticipant implements the exact unread definition: p is not the
// sender (by user id) and no receipt matches p.
func (m *Message) UnreadForParticipant(p participant.Participant) bool {
	if m.Sender.UserID == p.UserID {
		return false
	}
	return !m.ReadByParticipant(p)
}

// UnreadCount pairs a conversation with its unread total for one participant.
type UnreadCount struct {
	ConversationID string
	Count          int64
}

// MessagePage selects one page of a conversation's messages.
type MessagePage struct {
	ConversationID string
	Offset         int
	Limit          int
}

// MessageRepository is the persistence contract for messages.
type MessageRepository interface {
	Insert(ctx context.Context, message *Message) error
	// ListByConversation returns one page ordered by CreatedAt descending
	// plus the unpaginated total. All messages of the conversation are
	// eligible, there is no implicit status filter.
	ListByConversation(ctx context.Context, page MessagePage) ([]*Message, int64, error)
	// LastByConversation resolves the newest message per conversation id.
	// Conversations without messages are absent from the result.
	LastByConversation(ctx context.Context, conversationIDs []string) (map[string]*Message, error)
	// UnreadByConversation counts unread messages per conversation for p,
	// restricted to the given conversation ids. Zero-count conversations
	// are omitted.
	UnreadByConversation(ctx context.Context, conversationIDs []string, p participant.Participant) ([]UnreadCount, error)
	// MarkRead appends a receipt for p to each listed message that p has
	// not sent and not yet read. Returns the number of newly marked
	// messages; re-marking never duplicates receipts.
	MarkRead(ctx context.Context, messageIDs []string, p participant.Participant, now time.Time) (int64, error)
	// MarkAllRead applies MarkRead semantics to every currently unread
	// message in the conversation.
	MarkAllRead(ctx context.Context, conversationID string, p participant.Participant, now time.Time) (int64, error)
}
