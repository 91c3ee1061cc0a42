package chat

import (
	"time"

	"riderlink/internal/domain/shared/events"
)

// ConversationCreated is published when resolution creates a new conversation.
type ConversationCreated struct {
	events.BaseEvent
	ConversationID string   `json:"conversation_id"`
	PairKey        string   `json:"pair_key"`
	ContextType    string   `json:"context_type,omitempty"`
	ReferenceID    string   `json:"reference_id,omitempty"`
	Participants   []string `json:"participants"`
}

// NewConversationCreated builds the event from the stored conversation.
func NewConversationCreated(c *Conversation, now time.Time) ConversationCreated {
	return ConversationCreated{
		BaseEvent: events.BaseEvent{
			Name:      "chat.conversation_created",
			Aggregate: c.ID,
			Time:      now.UTC(),
		},
		ConversationID: c.ID,
		PairKey:        c.PairKey,
		ContextType:    string(c.ContextType()),
		ReferenceID:    referenceID(c),
		Participants:   []string{c.Participants[0].Key(), c.Participants[1].Key()},
	}
}

// MessageSent is published after a message insert.
type MessageSent struct {
	events.BaseEvent
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderType     string `json:"sender_type"`
	MessageType    string `json:"message_type"`
}

// NewMessageSent builds the event from the stored message.
func NewMessageSent(m *Message, now time.Time) MessageSent {
	return MessageSent{
		BaseEvent: events.BaseEvent{
			Name:      "chat.message_sent",
			Aggregate: m.ConversationID,
			Time:      now.UTC(),
		},
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.Sender.UserID,
		SenderType:     string(m.Sender.UserType),
		MessageType:    string(m.Type),
	}
}

func referenceID(c *Conversation) string {
	if c.Context == nil {
		return ""
	}
	return c.Context.ReferenceID
}
