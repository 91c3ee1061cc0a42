package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riderlink/internal/domain/participant"
)

var (
	sender = participant.Participant{UserID: strings.Repeat("a", 24), UserType: participant.TypeRider}
	reader = participant.Participant{UserID: strings.Repeat("b", 24), UserType: participant.TypeSponsor}
)

func validMessageParams() MessageParams {
	return MessageParams{
		ID:             strings.Repeat("1", 24),
		ConversationID: strings.Repeat("2", 24),
		Sender:         sender,
		Content:        "hello",
	}
}

func TestNewMessageContentBounds(t *testing.T) {
	params := validMessageParams()

	params.Content = ""
	_, err := NewMessage(params)
	assert.ErrorIs(t, err, ErrContentRequired)

	// Length is counted in characters, not bytes.
	params.Content = strings.Repeat("ü", MaxContentLength)
	message, err := NewMessage(params)
	require.NoError(t, err)
	assert.Equal(t, MessageText, message.Type)

	params.Content = strings.Repeat("ü", MaxContentLength+1)
	_, err = NewMessage(params)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestNewMessageDefaultsTypeToText(t *testing.T) {
	message, err := NewMessage(validMessageParams())
	require.NoError(t, err)
	assert.Equal(t, MessageText, message.Type)
}

func TestParseMessageType(t *testing.T) {
	got, err := ParseMessageType("")
	require.NoError(t, err)
	assert.Equal(t, MessageText, got)

	got, err = ParseMessageType("Image")
	require.NoError(t, err)
	assert.Equal(t, MessageImage, got)

	_, err = ParseMessageType("video")
	assert.Error(t, err)
}

func TestParseContextType(t *testing.T) {
	got, err := ParseContextType("")
	require.NoError(t, err)
	assert.Equal(t, ContextType(""), got)

	got, err = ParseContextType("JOB_OFFER")
	require.NoError(t, err)
	assert.Equal(t, ContextJobOffer, got)

	_, err = ParseContextType("booking")
	assert.ErrorIs(t, err, ErrInvalidContextType)
}

func TestMarkReadByIsIdempotent(t *testing.T) {
	message, err := NewMessage(validMessageParams())
	require.NoError(t, err)
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, message.MarkReadBy(reader, at))
	assert.False(t, message.MarkReadBy(reader, at.Add(time.Minute)))
	require.Len(t, message.ReadBy, 1)
	assert.Equal(t, at, message.ReadBy[0].ReadAt)
}

func TestUnreadForParticipant(t *testing.T) {
	message, err := NewMessage(validMessageParams())
	require.NoError(t, err)

	// The sender never counts their own message as unread.
	assert.False(t, message.UnreadForParticipant(sender))
	assert.True(t, message.UnreadForParticipant(reader))

	message.MarkReadBy(reader, time.Now())
	assert.False(t, message.UnreadForParticipant(reader))
}

func TestNewConversationRejectsSamePair(t *testing.T) {
	_, err := NewConversation(CreateParams{
		ID:      strings.Repeat("3", 24),
		Current: sender,
		Target:  sender,
	})
	assert.ErrorIs(t, err, ErrParticipantsRequired)
}

func TestConversationOther(t *testing.T) {
	conversation, err := NewConversation(CreateParams{
		ID:      strings.Repeat("3", 24),
		Current: sender,
		Target:  reader,
	})
	require.NoError(t, err)

	other, ok := conversation.Other(sender)
	require.True(t, ok)
	assert.Equal(t, reader, other)

	stranger := participant.Participant{UserID: strings.Repeat("c", 24), UserType: participant.TypeRider}
	_, ok = conversation.Other(stranger)
	assert.False(t, ok)
}
