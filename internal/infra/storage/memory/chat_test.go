package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
)

func conversationBetween(t *testing.T, id int, a, b participant.Participant, contextType chat.ContextType) *chat.Conversation {
	t.Helper()
	var ctx *chat.Context
	if contextType != "" {
		ctx = &chat.Context{Type: contextType}
	}
	conversation, err := chat.NewConversation(chat.CreateParams{
		ID:      fmt.Sprintf("%024d", id),
		Current: a,
		Target:  b,
		Context: ctx,
	})
	require.NoError(t, err)
	return conversation
}

func TestInsertEnforcesActivePairUniqueness(t *testing.T) {
	repo := NewConversationRepository()
	ctx := context.Background()
	a := participant.Participant{UserID: fmt.Sprintf("%024d", 1), UserType: participant.TypeRider}
	b := participant.Participant{UserID: fmt.Sprintf("%024d", 2), UserType: participant.TypeSponsor}

	first := conversationBetween(t, 10, a, b, "")
	require.NoError(t, repo.Insert(ctx, first))

	// Same pair and context, reversed order: the pair key normalizes.
	duplicate := conversationBetween(t, 11, b, a, "")
	assert.ErrorIs(t, repo.Insert(ctx, duplicate), chat.ErrConversationExists)

	// A different context type occupies its own slot.
	tagged := conversationBetween(t, 12, a, b, chat.ContextPrivate)
	assert.NoError(t, repo.Insert(ctx, tagged))

	// Soft-deleting frees the slot for a replacement.
	require.NoError(t, repo.SetStatus(ctx, first.ID, chat.StatusDeleted, time.Now()))
	replacement := conversationBetween(t, 13, a, b, "")
	assert.NoError(t, repo.Insert(ctx, replacement))
}
