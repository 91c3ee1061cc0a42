package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
)

// ConversationRepository is an in-memory implementation for demo mode and
// tests. It enforces the same active-pair uniqueness the database index does.
type ConversationRepository struct {
	mu    sync.RWMutex
	items map[string]*chat.Conversation
}

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{items: make(map[string]*chat.Conversation)}
}

var _ chat.ConversationRepository = (*ConversationRepository)(nil)

func (r *ConversationRepository) ByID(ctx context.Context, id string) (*chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversation, ok := r.items[id]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	clone := *conversation
	return &clone, nil
}

func (r *ConversationRepository) FindActive(ctx context.Context, pairKey string, contextType chat.ContextType) (*chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.findActiveLocked(pairKey, contextType)
	if found == nil {
		return nil, chat.ErrConversationNotFound
	}
	clone := *found
	return &clone, nil
}

func (r *ConversationRepository) findActiveLocked(pairKey string, contextType chat.ContextType) *chat.Conversation {
	var newest *chat.Conversation
	for _, conversation := range r.items {
		if conversation.Status != chat.StatusActive {
			continue
		}
		if conversation.PairKey != pairKey || conversation.ContextType() != contextType {
			continue
		}
		if newest == nil || conversation.UpdatedAt.After(newest.UpdatedAt) {
			newest = conversation
		}
	}
	return newest
}

func (r *ConversationRepository) Insert(ctx context.Context, conversation *chat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findActiveLocked(conversation.PairKey, conversation.ContextType()) != nil {
		return chat.ErrConversationExists
	}
	clone := *conversation
	r.items[conversation.ID] = &clone
	return nil
}

func (r *ConversationRepository) ListForParticipant(ctx context.Context, filter chat.ListFilter) ([]*chat.Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*chat.Conversation
	for _, conversation := range r.items {
		if conversation.Status != chat.StatusActive {
			continue
		}
		if !conversation.Includes(filter.Participant) {
			continue
		}
		if filter.ContextType != "" && conversation.ContextType() != filter.ContextType {
			continue
		}
		matches = append(matches, conversation)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})

	total := int64(len(matches))
	page := paginate(matches, filter.Offset, filter.Limit)
	out := make([]*chat.Conversation, 0, len(page))
	for _, conversation := range page {
		clone := *conversation
		out = append(out, &clone)
	}
	return out, total, nil
}

func (r *ConversationRepository) ActiveIDsForParticipant(ctx context.Context, p participant.Participant) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, conversation := range r.items {
		if conversation.Status == chat.StatusActive && conversation.Includes(p) {
			ids = append(ids, conversation.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *ConversationRepository) SetStatus(ctx context.Context, id string, status chat.Status, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.items[id]
	if !ok {
		return chat.ErrConversationNotFound
	}
	conversation.Status = status
	conversation.UpdatedAt = now.UTC()
	return nil
}

func (r *ConversationRepository) TouchUpdatedAt(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.items[id]
	if !ok {
		return chat.ErrConversationNotFound
	}
	conversation.UpdatedAt = now.UTC()
	return nil
}

// MessageRepository is the in-memory counterpart of the messages collection.
type MessageRepository struct {
	mu    sync.RWMutex
	items map[string]*chat.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{items: make(map[string]*chat.Message)}
}

var _ chat.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Insert(ctx context.Context, message *chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneMessage(message)
	r.items[message.ID] = clone
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, page chat.MessagePage) ([]*chat.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.byConversationLocked(page.ConversationID)
	total := int64(len(matches))
	selected := paginate(matches, page.Offset, page.Limit)
	out := make([]*chat.Message, 0, len(selected))
	for _, message := range selected {
		out = append(out, cloneMessage(message))
	}
	return out, total, nil
}

// byConversationLocked returns the conversation's messages newest first with
// id as a tiebreaker so pagination is deterministic.
func (r *MessageRepository) byConversationLocked(conversationID string) []*chat.Message {
	var matches []*chat.Message
	for _, message := range r.items {
		if message.ConversationID == conversationID {
			matches = append(matches, message)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches
}

func (r *MessageRepository) LastByConversation(ctx context.Context, conversationIDs []string) (map[string]*chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*chat.Message, len(conversationIDs))
	for _, id := range conversationIDs {
		if messages := r.byConversationLocked(id); len(messages) > 0 {
			result[id] = cloneMessage(messages[0])
		}
	}
	return result, nil
}

func (r *MessageRepository) UnreadByConversation(ctx context.Context, conversationIDs []string, p participant.Participant) ([]chat.UnreadCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[string]int64)
	for _, message := range r.items {
		if _, ok := wanted[message.ConversationID]; !ok {
			continue
		}
		if message.UnreadForParticipant(p) {
			counts[message.ConversationID]++
		}
	}

	out := make([]chat.UnreadCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, chat.UnreadCount{ConversationID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].ConversationID < out[j].ConversationID
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, messageIDs []string, p participant.Participant, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var marked int64
	for _, id := range messageIDs {
		message, ok := r.items[id]
		if !ok {
			continue
		}
		if message.MarkReadBy(p, now) {
			marked++
		}
	}
	return marked, nil
}

func (r *MessageRepository) MarkAllRead(ctx context.Context, conversationID string, p participant.Participant, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var marked int64
	for _, message := range r.items {
		if message.ConversationID != conversationID {
			continue
		}
		if !message.UnreadForParticipant(p) {
			continue
		}
		if message.MarkReadBy(p, now) {
			marked++
		}
	}
	return marked, nil
}

func cloneMessage(m *chat.Message) *chat.Message {
	clone := *m
	clone.ReadBy = append([]chat.ReadReceipt(nil), m.ReadBy...)
	return &clone
}

// paginate slices with offset/limit semantics matching database skip/limit.
// A non-positive limit returns the remainder.
func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
