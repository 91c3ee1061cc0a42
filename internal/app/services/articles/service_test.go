package articles

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainarticle "riderlink/internal/domain/article"
	"riderlink/internal/domain/participant"
	"riderlink/internal/infra/storage/memory"
)

func author(n int) participant.Participant {
	return participant.Participant{
		UserID:   fmt.Sprintf("%024d", n),
		UserType: participant.TypeSponsor,
	}
}

func newArticleService() *Service {
	return &Service{Articles: memory.NewArticleRepository()}
}

func TestCreateDraftIsAuthorOnly(t *testing.T) {
	service := newArticleService()
	ctx := context.Background()

	card, err := service.Create(ctx, CreateParams{
		Author: author(1),
		Title:  "Season recap",
		Body:   "What happened on tour this year.",
		Tags:   []string{"bmx"},
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", card.Status)

	viewer := author(1)
	got, err := service.ByID(ctx, card.ID, &viewer)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)

	other := author(2)
	_, err = service.ByID(ctx, card.ID, &other)
	assert.ErrorIs(t, err, domainarticle.ErrNotFound)

	_, err = service.ByID(ctx, card.ID, nil)
	assert.ErrorIs(t, err, domainarticle.ErrNotFound)
}

func TestPublishRequiresAuthor(t *testing.T) {
	service := newArticleService()
	ctx := context.Background()

	card, err := service.Create(ctx, CreateParams{
		Author: author(1),
		Title:  "Draft",
		Body:   "Body",
	})
	require.NoError(t, err)

	_, err = service.Publish(ctx, author(2), card.ID)
	assert.ErrorIs(t, err, domainarticle.ErrNotAuthor)

	published, err := service.Publish(ctx, author(1), card.ID)
	require.NoError(t, err)
	assert.Equal(t, "published", published.Status)

	// Once published, anyone reads it.
	_, err = service.ByID(ctx, card.ID, nil)
	assert.NoError(t, err)
}

func TestListShowsPublishedOnly(t *testing.T) {
	service := newArticleService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{Author: author(1), Title: "Draft", Body: "b"})
	require.NoError(t, err)
	live, err := service.Create(ctx, CreateParams{
		Author:  author(1),
		Title:   "Live",
		Body:    "b",
		Tags:    []string{"news"},
		Publish: true,
	})
	require.NoError(t, err)

	list, err := service.List(ctx, domainarticle.ListFilter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, live.ID, list.Items[0].ID)

	tagged, err := service.List(ctx, domainarticle.ListFilter{Tag: "news"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, tagged.Items, 1)

	missing, err := service.List(ctx, domainarticle.ListFilter{Tag: "road"}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, missing.Items)
}

func TestCreateValidation(t *testing.T) {
	service := newArticleService()
	ctx := context.Background()

	_, err := service.Create(ctx, CreateParams{Author: author(1), Body: "b"})
	assert.ErrorIs(t, err, domainarticle.ErrTitleRequired)

	_, err = service.Create(ctx, CreateParams{Author: author(1), Title: "t"})
	assert.ErrorIs(t, err, domainarticle.ErrBodyRequired)
}
