package offers

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"riderlink/internal/app/dto"
	"riderlink/internal/app/outbox"
	domainoffer "riderlink/internal/domain/offer"
)

// Service manages sponsor offers and rider applications.
type Service struct {
	Offers      domainoffer.Repository
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	IDGenerator func() string
	Clock       func() time.Time
}

// PublishParams feed Publish.
type PublishParams struct {
	SponsorID    string
	Title        string
	Description  string
	Sport        string
	ContractType string
	Country      string
}

// Publish creates an open offer owned by the sponsor.
func (s *Service) Publish(ctx context.Context, params PublishParams) (dto.OfferCard, error) {
	now := s.now()
	published, err := domainoffer.NewOffer(domainoffer.CreateParams{
		ID:           s.newID(),
		SponsorID:    params.SponsorID,
		Title:        params.Title,
		Description:  params.Description,
		Sport:        params.Sport,
		ContractType: params.ContractType,
		Country:      params.Country,
		Now:          now,
	})
	if err != nil {
		return dto.OfferCard{}, err
	}
	if err := s.Offers.Save(ctx, published); err != nil {
		return dto.OfferCard{}, err
	}
	if err := outbox.Record(ctx, s.Outbox, s.Encoder, domainoffer.NewOfferPublished(published, now)); err != nil && s.Logger != nil {
		s.Logger.Warn("offer published event not recorded", "offer_id", published.ID, "error", err)
	}
	return dto.MapOfferCard(published), nil
}

// ByID returns a visible offer; soft-deleted offers behave as absent.
func (s *Service) ByID(ctx context.Context, id string) (dto.OfferCard, error) {
	found, err := s.Offers.ByID(ctx, id)
	if err != nil {
		return dto.OfferCard{}, err
	}
	if found.Status == domainoffer.StatusDeleted {
		return dto.OfferCard{}, domainoffer.ErrNotFound
	}
	return dto.MapOfferCard(found), nil
}

// List returns one page of offers.
func (s *Service) List(ctx context.Context, filter domainoffer.ListFilter, page, limit int) (dto.OfferList, error) {
	page, limit = normalizePage(page, limit)
	filter.Offset = (page - 1) * limit
	filter.Limit = limit
	items, total, err := s.Offers.List(ctx, filter)
	if err != nil {
		return dto.OfferList{}, err
	}
	cards := make([]dto.OfferCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, dto.MapOfferCard(item))
	}
	return dto.OfferList{Items: cards, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// Close transitions an open offer; only the owning sponsor may close it.
func (s *Service) Close(ctx context.Context, sponsorID, offerID string) (dto.OfferCard, error) {
	found, err := s.Offers.ByID(ctx, offerID)
	if err != nil {
		return dto.OfferCard{}, err
	}
	if found.SponsorID != sponsorID {
		return dto.OfferCard{}, domainoffer.ErrNotOwner
	}
	if err := found.Close(s.now()); err != nil {
		return dto.OfferCard{}, err
	}
	if err := s.Offers.Save(ctx, found); err != nil {
		return dto.OfferCard{}, err
	}
	return dto.MapOfferCard(found), nil
}

// Apply records a rider's application. Each rider applies at most once per
// offer; duplicates surface as ErrApplicationExists.
func (s *Service) Apply(ctx context.Context, riderID, offerID, message string) (dto.ApplicationCard, error) {
	found, err := s.Offers.ByID(ctx, offerID)
	if err != nil {
		return dto.ApplicationCard{}, err
	}
	if found.Status != domainoffer.StatusOpen {
		return dto.ApplicationCard{}, domainoffer.ErrOfferClosed
	}
	application, err := domainoffer.NewApplication(s.newID(), offerID, riderID, message, s.now())
	if err != nil {
		return dto.ApplicationCard{}, err
	}
	if err := s.Offers.InsertApplication(ctx, application); err != nil {
		return dto.ApplicationCard{}, err
	}
	return dto.MapApplicationCard(application), nil
}

// ApplicationsForOffer lists applications for an offer its owner can review.
func (s *Service) ApplicationsForOffer(ctx context.Context, sponsorID, offerID string, page, limit int) (dto.ApplicationList, error) {
	found, err := s.Offers.ByID(ctx, offerID)
	if err != nil {
		return dto.ApplicationList{}, err
	}
	if found.SponsorID != sponsorID {
		return dto.ApplicationList{}, domainoffer.ErrNotOwner
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.Offers.ApplicationsByOffer(ctx, offerID, (page-1)*limit, limit)
	if err != nil {
		return dto.ApplicationList{}, err
	}
	return mapApplications(items, page, limit, total), nil
}

// ApplicationsForRider lists the rider's own applications.
func (s *Service) ApplicationsForRider(ctx context.Context, riderID string, page, limit int) (dto.ApplicationList, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.Offers.ApplicationsByRider(ctx, riderID, (page-1)*limit, limit)
	if err != nil {
		return dto.ApplicationList{}, err
	}
	return mapApplications(items, page, limit, total), nil
}

// Decide accepts or rejects an application; only the offer owner decides.
func (s *Service) Decide(ctx context.Context, sponsorID, applicationID string, accept bool) (dto.ApplicationCard, error) {
	application, err := s.Offers.ApplicationByID(ctx, applicationID)
	if err != nil {
		return dto.ApplicationCard{}, err
	}
	parent, err := s.Offers.ByID(ctx, application.OfferID)
	if err != nil {
		return dto.ApplicationCard{}, err
	}
	if parent.SponsorID != sponsorID {
		return dto.ApplicationCard{}, domainoffer.ErrNotOwner
	}
	if accept {
		application.Status = domainoffer.ApplicationAccepted
	} else {
		application.Status = domainoffer.ApplicationRejected
	}
	application.UpdatedAt = s.now()
	if err := s.Offers.SaveApplication(ctx, application); err != nil {
		return dto.ApplicationCard{}, err
	}
	return dto.MapApplicationCard(application), nil
}

func mapApplications(items []*domainoffer.Application, page, limit int, total int64) dto.ApplicationList {
	cards := make([]dto.ApplicationCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, dto.MapApplicationCard(item))
	}
	return dto.ApplicationList{Items: cards, Pagination: dto.NewPagination(page, limit, total)}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
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
