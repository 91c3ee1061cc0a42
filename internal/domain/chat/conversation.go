package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"riderlink/internal/domain/participant"
)

var (
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrConversationExists   = errors.New("chat: conversation already exists for pair and context")
	ErrParticipantsRequired = errors.New("chat: exactly two distinct participants are required")
	ErrNotParticipant       = errors.New("chat: not a conversation participant")
	ErrConversationInactive = errors.New("chat: conversation is not active")
	ErrInvalidContextType   = errors.New("chat: invalid context type")
)

// ContextType tags a conversation with the entity it was started around.
type ContextType string

const (
	ContextJobOffer ContextType = "job_offer"
	ContextPrivate  ContextType = "private"
)

// ParseContextType normalizes raw input; empty input means "no context".
func ParseContextType(raw string) (ContextType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "job_offer":
		return ContextJobOffer, nil
	case "private":
		return ContextPrivate, nil
	default:
		return "", ErrInvalidContextType
	}
}

// Context links a conversation to an external entity, e.g. a job offer.
type Context struct {
	Type        ContextType
	ReferenceID string
}

// Status is the conversation lifecycle state. Deletion is a soft transition,
// records are never physically removed.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Conversation holds exactly two distinct participants. The pair is unordered
// for lookup purposes; PairKey carries the normalized form.
type Conversation struct {
	ID           string
	Participants [2]participant.Participant
	PairKey      string
	Context      *Context
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams feed NewConversation.
type CreateParams struct {
	ID      string
	Current participant.Participant
	Target  participant.Participant
	Context *Context
	Now     time.Time
}

// NewConversation builds an active conversation between two distinct
// participants. Self-conversations are rejected here as well, even though
// callers are expected to filter them out first.
func NewConversation(params CreateParams) (*Conversation, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, errors.New("chat: conversation id is required")
	}
	if params.Current.UserID == "" || params.Target.UserID == "" {
		return nil, ErrParticipantsRequired
	}
	if params.Current.Equal(params.Target) {
		return nil, ErrParticipantsRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	var ctxCopy *Context
	if params.Context != nil && params.Context.Type != "" {
		ctxCopy = &Context{Type: params.Context.Type, ReferenceID: strings.TrimSpace(params.Context.ReferenceID)}
	}
	return &Conversation{
		ID:           params.ID,
		Participants: [2]participant.Participant{params.Current, params.Target},
		PairKey:      participant.PairKey(params.Current, params.Target),
		Context:      ctxCopy,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Includes reports whether p is one of the two participants.
func (c *Conversation) Includes(p participant.Participant) bool {
	return c.Participants[0].Equal(p) || c.Participants[1].Equal(p)
}

// Other returns the participant that is not p. The second return is false when
// p is not part of the conversation at all.
func (c *Conversation) Other(p participant.Participant) (participant.Participant, bool) {
	switch {
	case c.Participants[0].Equal(p):
		return c.Participants[1], true
	case c.Participants[1].Equal(p):
		return c.Participants[0], true
	default:
		return participant.Participant{}, false
	}
}

// ContextType returns the context tag or empty when untagged.
func (c *Conversation) ContextType() ContextType {
	if c.Context == nil {
		return ""
	}
	return c.Context.Type
}

// Touch bumps UpdatedAt, typically on new message receipt.
func (c *Conversation) Touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	c.UpdatedAt = now.UTC()
}

// ListFilter narrows a participant's conversation listing.
type ListFilter struct {
	Participant participant.Participant
	ContextType ContextType
	Offset      int
	Limit       int
}

// ConversationRepository is the persistence contract for conversations.
// Insert must enforce at-most-one ACTIVE conversation per (pair key, context
// type) and return ErrConversationExists on violation so resolution can retry
// as fetch-existing.
type ConversationRepository interface {
	ByID(ctx context.Context, id string) (*Conversation, error)
	// FindActive returns the most recently updated ACTIVE conversation for
	// the pair and context type, or ErrConversationNotFound. An empty
	// contextType matches only untagged conversations.
	FindActive(ctx context.Context, pairKey string, contextType ContextType) (*Conversation, error)
	Insert(ctx context.Context, conversation *Conversation) error
	// ListForParticipant returns one page ordered by UpdatedAt descending
	// plus the unpaginated total.
	ListForParticipant(ctx context.Context, filter ListFilter) ([]*Conversation, int64, error)
	// ActiveIDsForParticipant returns ids of every ACTIVE conversation
	// containing the participant, for unread aggregation.
	ActiveIDsForParticipant(ctx context.Context, p participant.Participant) ([]string, error)
	SetStatus(ctx context.Context, id string, status Status, now time.Time) error
	TouchUpdatedAt(ctx context.Context, id string, now time.Time) error
}
