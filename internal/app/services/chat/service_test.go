package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainchat "riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/rider"
	"riderlink/internal/domain/sponsor"
	"riderlink/internal/infra/storage/memory"
)

func oid(n int) string {
	return fmt.Sprintf("%024d", n)
}

type chatFixture struct {
	service *Service
	outbox  *memory.Outbox
	riders  *memory.RiderRepository
	clock   time.Time
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		outbox: memory.NewOutbox(),
		riders: memory.NewRiderRepository(),
		clock:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	sponsors := memory.NewSponsorRepository()
	seq := 0
	f.service = &Service{
		Conversations: memory.NewConversationRepository(),
		Messages:      memory.NewMessageRepository(),
		Profiles:      profile.Directory{Riders: f.riders, Sponsors: sponsors},
		Outbox:        f.outbox,
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("%024d", 9000+seq)
		},
		Clock: func() time.Time {
			f.clock = f.clock.Add(time.Second)
			return f.clock
		},
	}

	riderProfile, err := rider.NewRider(rider.CreateParams{
		ID:           oid(1),
		Email:        "kai@example.com",
		Username:     "kai",
		DisplayName:  "Kai",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, f.riders.Save(context.Background(), riderProfile))

	sponsorProfile, err := sponsor.NewSponsor(sponsor.CreateParams{
		ID:           oid(2),
		Email:        "brand@example.com",
		CompanyName:  "Brand Co",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	require.NoError(t, sponsors.Save(context.Background(), sponsorProfile))
	return f
}

func riderPart(n int) participant.Participant {
	return participant.Participant{UserID: oid(n), UserType: participant.TypeRider}
}

func sponsorPart(n int) participant.Participant {
	return participant.Participant{UserID: oid(n), UserType: participant.TypeSponsor}
}

func TestGetOrCreateIsSymmetric(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	first, created, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.service.GetOrCreate(ctx, b, a, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateDiscriminatesContextType(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	untagged, _, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)
	private, _, err := f.service.GetOrCreate(ctx, a, b, &domainchat.Context{Type: domainchat.ContextPrivate})
	require.NoError(t, err)
	job, created, err := f.service.GetOrCreate(ctx, a, b, &domainchat.Context{Type: domainchat.ContextJobOffer, ReferenceID: oid(77)})
	require.NoError(t, err)
	assert.True(t, created)

	assert.NotEqual(t, untagged.ID, private.ID)
	assert.NotEqual(t, private.ID, job.ID)
	assert.Equal(t, oid(77), job.Context.ReferenceID)

	// Same tag resolves to the existing conversation.
	again, created, err := f.service.GetOrCreate(ctx, b, a, &domainchat.Context{Type: domainchat.ContextPrivate})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, private.ID, again.ID)
}

func TestGetOrCreateRejectsSelf(t *testing.T) {
	f := newChatFixture(t)
	_, _, err := f.service.GetOrCreate(context.Background(), riderPart(1), riderPart(1), nil)
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestGetOrCreateRecordsEvent(t *testing.T) {
	f := newChatFixture(t)
	_, _, err := f.service.GetOrCreate(context.Background(), riderPart(1), sponsorPart(2), nil)
	require.NoError(t, err)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "chat.conversation_created", records[0].Name)
}

func TestSendAndUnreadFlow(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	conversation, _, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.service.Send(ctx, a, conversation.ID, fmt.Sprintf("hello %d", i), domainchat.MessageText)
		require.NoError(t, err)
	}

	// The sender has nothing unread, the other side has three.
	senderSummary, err := f.service.TotalUnread(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, senderSummary.TotalUnreadCount)

	summary, err := f.service.TotalUnread(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalUnreadCount)
	require.Len(t, summary.ConversationsWithUnread, 1)
	assert.Equal(t, conversation.ID, summary.ConversationsWithUnread[0].ConversationID)

	marked, err := f.service.MarkAllRead(ctx, b, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)

	// Re-marking is a no-op.
	marked, err = f.service.MarkAllRead(ctx, b, conversation.ID)
	require.NoError(t, err)
	assert.Zero(t, marked)

	summary, err = f.service.TotalUnread(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalUnreadCount)
	assert.Empty(t, summary.ConversationsWithUnread)
}

func TestMarkReadAppendsReceiptOncePerParticipant(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	conversation, _, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)
	sent, err := f.service.Send(ctx, a, conversation.ID, "mine", domainchat.MessageText)
	require.NoError(t, err)

	// A receipt lands even on the sender's own message, but never twice.
	marked, err := f.service.MarkRead(ctx, a, []string{sent.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	marked, err = f.service.MarkRead(ctx, a, []string{sent.ID})
	require.NoError(t, err)
	assert.Zero(t, marked)

	marked, err = f.service.MarkRead(ctx, b, []string{sent.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	marked, err = f.service.MarkRead(ctx, b, []string{sent.ID})
	require.NoError(t, err)
	assert.Zero(t, marked)

	// The sender's receipt changes nothing about unread totals.
	unread, err := f.service.UnreadByConversation(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestListForParticipantEnrichment(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	conversation, _, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)

	list, err := f.service.ListForParticipant(ctx, b, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, conversation.ID, list.Items[0].ID)
	assert.Equal(t, "Kai", list.Items[0].Other.DisplayName)
	// No messages yet, so no last message.
	assert.Nil(t, list.Items[0].LastMessage)

	_, err = f.service.Send(ctx, a, conversation.ID, "first", domainchat.MessageText)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, a, conversation.ID, "second", domainchat.MessageText)
	require.NoError(t, err)

	list, err = f.service.ListForParticipant(ctx, b, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.NotNil(t, list.Items[0].LastMessage)
	assert.Equal(t, "second", list.Items[0].LastMessage.Content)
	assert.Equal(t, int64(1), list.Pagination.TotalItems)
}

func TestListOrdersByActivity(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a := riderPart(1)

	older, _, err := f.service.GetOrCreate(ctx, a, sponsorPart(2), nil)
	require.NoError(t, err)
	newer, _, err := f.service.GetOrCreate(ctx, a, sponsorPart(3), nil)
	require.NoError(t, err)

	// Activity in the older conversation bumps it to the top.
	_, err = f.service.Send(ctx, a, older.ID, "ping", domainchat.MessageText)
	require.NoError(t, err)

	list, err := f.service.ListForParticipant(ctx, a, 1, 20, "")
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, older.ID, list.Items[0].ID)
	assert.Equal(t, newer.ID, list.Items[1].ID)
}

func TestListPaginationValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.service.ListForParticipant(ctx, riderPart(1), 0, 20, "")
	assert.ErrorIs(t, err, ErrInvalidPagination)

	_, err = f.service.ListForParticipant(ctx, riderPart(1), 1, 101, "")
	assert.ErrorIs(t, err, ErrInvalidPagination)

	_, err = f.service.ListMessages(ctx, oid(5), 1, -1)
	assert.ErrorIs(t, err, ErrInvalidPagination)

	// Zero limit falls back to the default.
	_, err = f.service.ListForParticipant(ctx, riderPart(1), 1, 0, "")
	assert.NoError(t, err)
}

func TestConversationAuthorization(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conversation, _, err := f.service.GetOrCreate(ctx, riderPart(1), sponsorPart(2), nil)
	require.NoError(t, err)

	_, err = f.service.Conversation(ctx, riderPart(3), conversation.ID)
	assert.ErrorIs(t, err, domainchat.ErrNotParticipant)

	_, err = f.service.Send(ctx, sponsorPart(4), conversation.ID, "hi", domainchat.MessageText)
	assert.ErrorIs(t, err, domainchat.ErrNotParticipant)

	_, err = f.service.MarkAllRead(ctx, riderPart(3), conversation.ID)
	assert.ErrorIs(t, err, domainchat.ErrNotParticipant)
}

func TestDeleteSoftDeletes(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	a, b := riderPart(1), sponsorPart(2)

	conversation, _, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, a, conversation.ID))

	// Deleted conversations drop out of listings and unread aggregation.
	list, err := f.service.ListForParticipant(ctx, a, 1, 20, "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = f.service.Send(ctx, a, conversation.ID, "hi", domainchat.MessageText)
	assert.ErrorIs(t, err, domainchat.ErrConversationInactive)

	// The pair slot is free again: resolution creates a fresh conversation.
	replacement, created, err := f.service.GetOrCreate(ctx, a, b, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, conversation.ID, replacement.ID)
}

func TestSendRecordsOutboxEvent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conversation, _, err := f.service.GetOrCreate(ctx, riderPart(1), sponsorPart(2), nil)
	require.NoError(t, err)
	_, err = f.service.Send(ctx, riderPart(1), conversation.ID, "hello", domainchat.MessageText)
	require.NoError(t, err)

	records := f.outbox.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "chat.message_sent", records[1].Name)
	assert.Equal(t, conversation.ID, records[1].Aggregate)
}
