package offers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainoffer "riderlink/internal/domain/offer"
	"riderlink/internal/infra/storage/memory"
)

func oid(n int) string {
	return fmt.Sprintf("%024d", n)
}

func newOfferService() (*Service, *memory.Outbox) {
	records := memory.NewOutbox()
	return &Service{
		Offers: memory.NewOfferRepository(),
		Outbox: records,
	}, records
}

func publishParams(sponsorID string) PublishParams {
	return PublishParams{
		SponsorID:    sponsorID,
		Title:        "Team rider wanted",
		Description:  "Season-long partnership for the street team.",
		Sport:        "bmx",
		ContractType: "ambassador",
		Country:      "France",
	}
}

func TestPublishAndGet(t *testing.T) {
	service, records := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	assert.Equal(t, "open", card.Status)

	got, err := service.ByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.Title, got.Title)

	require.Len(t, records.Records(), 1)
	assert.Equal(t, "offer.published", records.Records()[0].Name)
}

func TestApplyOncePerOffer(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)

	application, err := service.Apply(ctx, oid(2), card.ID, "pick me")
	require.NoError(t, err)
	assert.Equal(t, "pending", application.Status)

	_, err = service.Apply(ctx, oid(2), card.ID, "pick me again")
	assert.ErrorIs(t, err, domainoffer.ErrApplicationExists)

	// A different rider can still apply.
	_, err = service.Apply(ctx, oid(3), card.ID, "me too")
	assert.NoError(t, err)
}

func TestApplyToClosedOffer(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	_, err = service.Close(ctx, oid(1), card.ID)
	require.NoError(t, err)

	_, err = service.Apply(ctx, oid(2), card.ID, "too late")
	assert.ErrorIs(t, err, domainoffer.ErrOfferClosed)
}

func TestCloseRequiresOwnership(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)

	_, err = service.Close(ctx, oid(9), card.ID)
	assert.ErrorIs(t, err, domainoffer.ErrNotOwner)

	closed, err := service.Close(ctx, oid(1), card.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)

	// Closing twice fails on the state transition.
	_, err = service.Close(ctx, oid(1), card.ID)
	assert.ErrorIs(t, err, domainoffer.ErrOfferClosed)
}

func TestApplicationsVisibility(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	_, err = service.Apply(ctx, oid(2), card.ID, "hi")
	require.NoError(t, err)

	list, err := service.ApplicationsForOffer(ctx, oid(1), card.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = service.ApplicationsForOffer(ctx, oid(9), card.ID, 1, 20)
	assert.ErrorIs(t, err, domainoffer.ErrNotOwner)

	mine, err := service.ApplicationsForRider(ctx, oid(2), 1, 20)
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, card.ID, mine.Items[0].OfferID)
}

func TestDecide(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	card, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	application, err := service.Apply(ctx, oid(2), card.ID, "hi")
	require.NoError(t, err)

	_, err = service.Decide(ctx, oid(9), application.ID, true)
	assert.ErrorIs(t, err, domainoffer.ErrNotOwner)

	accepted, err := service.Decide(ctx, oid(1), application.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	rejected, err := service.Decide(ctx, oid(1), application.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	_, err = service.Decide(ctx, oid(1), oid(42), true)
	assert.ErrorIs(t, err, domainoffer.ErrApplicationMissing)
}

func TestListFiltersOpenOffers(t *testing.T) {
	service, _ := newOfferService()
	ctx := context.Background()

	open, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	closed, err := service.Publish(ctx, publishParams(oid(1)))
	require.NoError(t, err)
	_, err = service.Close(ctx, oid(1), closed.ID)
	require.NoError(t, err)

	all, err := service.List(ctx, domainoffer.ListFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.TotalItems)

	onlyOpen, err := service.List(ctx, domainoffer.ListFilter{OnlyOpen: true}, 1, 20)
	require.NoError(t, err)
	require.Len(t, onlyOpen.Items, 1)
	assert.Equal(t, open.ID, onlyOpen.Items[0].ID)
}
