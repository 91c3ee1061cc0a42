package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"riderlink/internal/app/dto"
	"riderlink/internal/app/outbox"
	domainchat "riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
	"riderlink/internal/domain/profile"
)

var (
	ErrSelfConversation  = errors.New("chat: cannot start a conversation with yourself")
	ErrInvalidPagination = errors.New("chat: page must be >= 1 and limit within [1,100]")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service implements conversation resolution, listing, messaging, and unread
// tracking over the conversation and message stores. It holds no state across
// calls; every operation re-reads.
type Service struct {
	Conversations domainchat.ConversationRepository
	Messages      domainchat.MessageRepository
	Profiles      profile.Directory
	Outbox        outbox.Outbox
	Encoder       outbox.EventEncoder
	Logger        *slog.Logger
	IDGenerator   func() string
	Clock         func() time.Time
}

// GetOrCreate finds the most recently updated ACTIVE conversation for the
// participant pair and context type, creating one when absent. The storage
// layer enforces at-most-one active conversation per (pair, context type);
// an insert racing another creator resolves to fetching the winner.
func (s *Service) GetOrCreate(ctx context.Context, current, target participant.Participant, convCtx *domainchat.Context) (*domainchat.Conversation, bool, error) {
	if current.Equal(target) {
		return nil, false, ErrSelfConversation
	}
	pairKey := participant.PairKey(current, target)
	contextType := domainchat.ContextType("")
	if convCtx != nil {
		contextType = convCtx.Type
	}

	existing, err := s.Conversations.FindActive(ctx, pairKey, contextType)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainchat.ErrConversationNotFound) {
		return nil, false, err
	}

	now := s.now()
	conversation, err := domainchat.NewConversation(domainchat.CreateParams{
		ID:      s.newID(),
		Current: current,
		Target:  target,
		Context: convCtx,
		Now:     now,
	})
	if err != nil {
		return nil, false, err
	}
	if err := s.Conversations.Insert(ctx, conversation); err != nil {
		if errors.Is(err, domainchat.ErrConversationExists) {
			winner, findErr := s.Conversations.FindActive(ctx, pairKey, contextType)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	if err := outbox.Record(ctx, s.Outbox, s.Encoder, domainchat.NewConversationCreated(conversation, now)); err != nil {
		s.warn("conversation created event not recorded", "conversation_id", conversation.ID, "error", err)
	}
	s.info("conversation created", "conversation_id", conversation.ID, "pair_key", pairKey, "context_type", string(contextType))
	return conversation, true, nil
}

// ListForParticipant returns one page of ACTIVE conversations containing p,
// most recently active first, enriched with the other participant's profile
// preview and the latest message. Enrichment failures degrade to absent
// fields rather than failing the page.
func (s *Service) ListForParticipant(ctx context.Context, p participant.Participant, page, limit int, contextType domainchat.ContextType) (dto.ConversationList, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return dto.ConversationList{}, err
	}
	conversations, total, err := s.Conversations.ListForParticipant(ctx, domainchat.ListFilter{
		Participant: p,
		ContextType: contextType,
		Offset:      (page - 1) * limit,
		Limit:       limit,
	})
	if err != nil {
		return dto.ConversationList{}, err
	}

	others := make([]participant.Participant, 0, len(conversations))
	ids := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		ids = append(ids, conversation.ID)
		if other, ok := conversation.Other(p); ok {
			others = append(others, other)
		}
	}

	previews, err := s.Profiles.PreviewsFor(ctx, others)
	if err != nil {
		s.warn("profile enrichment failed", "error", err)
		previews = nil
	}
	lastMessages, err := s.Messages.LastByConversation(ctx, ids)
	if err != nil {
		s.warn("last message enrichment failed", "error", err)
		lastMessages = nil
	}

	items := make([]dto.ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		other, _ := conversation.Other(p)
		preview, found := previews[other.Key()]
		summary := dto.ConversationSummary{
			ID:          conversation.ID,
			ContextType: string(conversation.ContextType()),
			Other:       dto.MapPreview(other.UserID, string(other.UserType), preview, found),
			CreatedAt:   conversation.CreatedAt,
			UpdatedAt:   conversation.UpdatedAt,
		}
		if conversation.Context != nil {
			summary.ReferenceID = conversation.Context.ReferenceID
		}
		if last, ok := lastMessages[conversation.ID]; ok {
			senderPreview, senderFound := previews[last.Sender.Key()]
			message := dto.MapChatMessage(last, dto.MapPreview(last.Sender.UserID, string(last.Sender.UserType), senderPreview, senderFound))
			summary.LastMessage = &message
		}
		items = append(items, summary)
	}
	return dto.ConversationList{
		Items:      items,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

// ListMessages returns one page of a conversation's messages, newest first,
// with sender previews. Participant authorization happens at the boundary;
// this method returns whatever the conversation contains.
func (s *Service) ListMessages(ctx context.Context, conversationID string, page, limit int) (dto.ChatMessageList, error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return dto.ChatMessageList{}, err
	}
	messages, total, err := s.Messages.ListByConversation(ctx, domainchat.MessagePage{
		ConversationID: conversationID,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	})
	if err != nil {
		return dto.ChatMessageList{}, err
	}

	senders := make([]participant.Participant, 0, len(messages))
	for _, message := range messages {
		senders = append(senders, message.Sender)
	}
	previews, err := s.Profiles.PreviewsFor(ctx, senders)
	if err != nil {
		s.warn("sender enrichment failed", "conversation_id", conversationID, "error", err)
		previews = nil
	}

	items := make([]dto.ChatMessage, 0, len(messages))
	for _, message := range messages {
		preview, found := previews[message.Sender.Key()]
		items = append(items, dto.MapChatMessage(message, dto.MapPreview(message.Sender.UserID, string(message.Sender.UserType), preview, found)))
	}
	return dto.ChatMessageList{
		Items:      items,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

// Conversation loads a conversation and verifies p participates in it.
func (s *Service) Conversation(ctx context.Context, p participant.Participant, conversationID string) (*domainchat.Conversation, error) {
	conversation, err := s.Conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.Includes(p) {
		return nil, domainchat.ErrNotParticipant
	}
	return conversation, nil
}

// Send inserts a message from p into the conversation and bumps the parent's
// UpdatedAt as a separate, non-transactional write: the bump lagging the
// message under partial failure is tolerated.
func (s *Service) Send(ctx context.Context, p participant.Participant, conversationID, content string, messageType domainchat.MessageType) (dto.ChatMessage, error) {
	conversation, err := s.Conversation(ctx, p, conversationID)
	if err != nil {
		return dto.ChatMessage{}, err
	}
	if conversation.Status != domainchat.StatusActive {
		return dto.ChatMessage{}, domainchat.ErrConversationInactive
	}
	now := s.now()
	message, err := domainchat.NewMessage(domainchat.MessageParams{
		ID:             s.newID(),
		ConversationID: conversationID,
		Sender:         p,
		Content:        content,
		Type:           messageType,
		Now:            now,
	})
	if err != nil {
		return dto.ChatMessage{}, err
	}
	if err := s.Messages.Insert(ctx, message); err != nil {
		return dto.ChatMessage{}, err
	}
	if err := s.Conversations.TouchUpdatedAt(ctx, conversationID, now); err != nil {
		s.warn("conversation touch failed after message insert", "conversation_id", conversationID, "error", err)
	}
	if err := outbox.Record(ctx, s.Outbox, s.Encoder, domainchat.NewMessageSent(message, now)); err != nil {
		s.warn("message sent event not recorded", "message_id", message.ID, "error", err)
	}

	previews, err := s.Profiles.PreviewsFor(ctx, []participant.Participant{p})
	if err != nil {
		previews = nil
	}
	preview, found := previews[p.Key()]
	return dto.MapChatMessage(message, dto.MapPreview(p.UserID, string(p.UserType), preview, found)), nil
}

// MarkRead appends a read receipt for p on each listed message. Idempotent:
// a message already carrying p's receipt is skipped. Own messages accept a
// receipt too; the unread definition ignores them either way.
func (s *Service) MarkRead(ctx context.Context, p participant.Participant, messageIDs []string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	return s.Messages.MarkRead(ctx, messageIDs, p, s.now())
}

// MarkAllRead marks every currently unread message of the conversation.
func (s *Service) MarkAllRead(ctx context.Context, p participant.Participant, conversationID string) (int64, error) {
	if _, err := s.Conversation(ctx, p, conversationID); err != nil {
		return 0, err
	}
	return s.Messages.MarkAllRead(ctx, conversationID, p, s.now())
}

// UnreadByConversation returns per-conversation unread counts for p across
// every ACTIVE conversation containing p, omitting zero counts.
func (s *Service) UnreadByConversation(ctx context.Context, p participant.Participant) ([]dto.ConversationUnread, error) {
	ids, err := s.Conversations.ActiveIDsForParticipant(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []dto.ConversationUnread{}, nil
	}
	counts, err := s.Messages.UnreadByConversation(ctx, ids, p)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConversationUnread, 0, len(counts))
	for _, count := range counts {
		out = append(out, dto.ConversationUnread{ConversationID: count.ConversationID, UnreadCount: count.Count})
	}
	return out, nil
}

// TotalUnread sums the per-conversation counts and returns the breakdown.
func (s *Service) TotalUnread(ctx context.Context, p participant.Participant) (dto.UnreadSummary, error) {
	counts, err := s.UnreadByConversation(ctx, p)
	if err != nil {
		return dto.UnreadSummary{}, err
	}
	summary := dto.UnreadSummary{ConversationsWithUnread: counts}
	for _, count := range counts {
		summary.TotalUnreadCount += count.UnreadCount
	}
	return summary, nil
}

// Delete soft-deletes the conversation for a participant; the record is never
// physically removed.
func (s *Service) Delete(ctx context.Context, p participant.Participant, conversationID string) error {
	if _, err := s.Conversation(ctx, p, conversationID); err != nil {
		return err
	}
	return s.Conversations.SetStatus(ctx, conversationID, domainchat.StatusDeleted, s.now())
}

func normalizePage(page, limit int) (int, int, error) {
	if limit == 0 {
		limit = defaultPageLimit
	}
	if page < 1 || limit < 1 || limit > maxPageLimit {
		return 0, 0, ErrInvalidPagination
	}
	return page, limit, nil
}

func (s *Service) newID() string {
	if s.IDGenerator != nil {
		return s.IDGenerator()
	}
	return primitive.NewObjectID().Hex()
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) info(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Warn(msg, args...)
	}
}
