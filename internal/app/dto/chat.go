package dto

import (
	"time"

	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/profile"
)

// ParticipantPreview is the enriched view of a conversation counterpart or a
// message sender. Fields degrade to empty when the profile reference cannot
// be resolved.
type ParticipantPreview struct {
	UserID      string `json:"user_id"`
	UserType    string `json:"user_type"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// ConversationSummary describes one conversation from a participant's side.
type ConversationSummary struct {
	ID          string             `json:"id"`
	ContextType string             `json:"context_type,omitempty"`
	ReferenceID string             `json:"reference_id,omitempty"`
	Other       ParticipantPreview `json:"other_participant"`
	LastMessage *ChatMessage       `json:"last_message,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ConversationList is a paginated collection of summaries.
type ConversationList struct {
	Items      []ConversationSummary `json:"items"`
	Pagination Pagination            `json:"pagination"`
}

// ChatMessage is a single message payload with sender enrichment.
type ChatMessage struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Sender         ParticipantPreview `json:"sender"`
	Content        string             `json:"content"`
	MessageType    string             `json:"message_type"`
	ReadBy         []ReadReceipt      `json:"read_by"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ReadReceipt mirrors the stored receipt.
type ReadReceipt struct {
	UserID   string    `json:"user_id"`
	UserType string    `json:"user_type"`
	ReadAt   time.Time `json:"read_at"`
}

// ChatMessageList is a paginated message collection.
type ChatMessageList struct {
	Items      []ChatMessage `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// ConversationUnread pairs a conversation with its unread count.
type ConversationUnread struct {
	ConversationID string `json:"conversation_id"`
	UnreadCount    int64  `json:"unread_count"`
}

// UnreadSummary is the total across conversations plus the breakdown.
type UnreadSummary struct {
	TotalUnreadCount        int64                `json:"totalUnreadCount"`
	ConversationsWithUnread []ConversationUnread `json:"conversationsWithUnread"`
}

// MapPreview copies a resolved profile preview; the zero value of the
// preview leaves enrichment fields absent.
func MapPreview(userID, userType string, preview profile.Preview, found bool) ParticipantPreview {
	out := ParticipantPreview{UserID: userID, UserType: userType}
	if !found {
		return out
	}
	out.DisplayName = preview.DisplayName
	out.AvatarURL = preview.AvatarURL
	out.FirstName = preview.FirstName
	out.LastName = preview.LastName
	out.FullName = preview.FullName
	out.CompanyName = preview.CompanyName
	return out
}

// MapChatMessage copies a domain message with its sender preview.
func MapChatMessage(m *chat.Message, sender ParticipantPreview) ChatMessage {
	receipts := make([]ReadReceipt, 0, len(m.ReadBy))
	for _, r := range m.ReadBy {
		receipts = append(receipts, ReadReceipt{
			UserID:   r.UserID,
			UserType: string(r.UserType),
			ReadAt:   r.ReadAt,
		})
	}
	return ChatMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Content:        m.Content,
		MessageType:    string(m.Type),
		ReadBy:         receipts,
		CreatedAt:      m.CreatedAt,
	}
}
