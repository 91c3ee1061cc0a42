package offer

import (
	"context"
	"errors"
	"strings"
	"time"

	"riderlink/internal/domain/shared/events"
)

var (
	ErrNotFound           = errors.New("offer: not found")
	ErrTitleRequired      = errors.New("offer: title is required")
	ErrSponsorRequired    = errors.New("offer: sponsor id is required")
	ErrOfferClosed        = errors.New("offer: offer is closed")
	ErrNotOwner           = errors.New("offer: caller does not own this offer")
	ErrApplicationExists  = errors.New("offer: rider already applied")
	ErrApplicationMissing = errors.New("offer: application not found")
)

// Status is the offer lifecycle state; deletion is soft.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusDeleted Status = "deleted"
)

// Offer is a sponsorship opportunity published by a sponsor.
type Offer struct {
	ID           string
	SponsorID    string
	Title        string
	Description  string
	Sport        string
	ContractType string
	Country      string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams feed NewOffer.
type CreateParams struct {
	ID           string
	SponsorID    string
	Title        string
	Description  string
	Sport        string
	ContractType string
	Country      string
	Now          time.Time
}

// NewOffer validates required fields and returns an open offer.
func NewOffer(params CreateParams) (*Offer, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, errors.New("offer: id is required")
	}
	if strings.TrimSpace(params.SponsorID) == "" {
		return nil, ErrSponsorRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Offer{
		ID:           params.ID,
		SponsorID:    params.SponsorID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		Sport:        strings.TrimSpace(strings.ToLower(params.Sport)),
		ContractType: strings.TrimSpace(strings.ToLower(params.ContractType)),
		Country:      strings.TrimSpace(params.Country),
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Close transitions the offer out of the open state.
func (o *Offer) Close(now time.Time) error {
	if o.Status != StatusOpen {
		return ErrOfferClosed
	}
	o.Status = StatusClosed
	o.touch(now)
	return nil
}

func (o *Offer) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	o.UpdatedAt = now.UTC()
}

// ApplicationStatus tracks a rider's application lifecycle.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a rider's response to an offer. At most one application per
// (offer, rider) pair, enforced at the storage layer.
type Application struct {
	ID        string
	OfferID   string
	RiderID   string
	Message   string
	Status    ApplicationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewApplication validates and returns a pending application.
func NewApplication(id, offerID, riderID, message string, now time.Time) (*Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("offer: application id is required")
	}
	if strings.TrimSpace(offerID) == "" {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(riderID) == "" {
		return nil, errors.New("offer: rider id is required")
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Application{
		ID:        id,
		OfferID:   offerID,
		RiderID:   riderID,
		Message:   strings.TrimSpace(message),
		Status:    ApplicationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListFilter narrows offer listings.
type ListFilter struct {
	SponsorID    string
	Sport        string
	ContractType string
	OnlyOpen     bool
	Offset       int
	Limit        int
}

// Repository is the persistence contract for offers and applications.
// InsertApplication must return ErrApplicationExists when the (offer, rider)
// pair already applied.
type Repository interface {
	ByID(ctx context.Context, id string) (*Offer, error)
	Save(ctx context.Context, offer *Offer) error
	List(ctx context.Context, filter ListFilter) ([]*Offer, int64, error)
	InsertApplication(ctx context.Context, application *Application) error
	ApplicationsByOffer(ctx context.Context, offerID string, offset, limit int) ([]*Application, int64, error)
	ApplicationsByRider(ctx context.Context, riderID string, offset, limit int) ([]*Application, int64, error)
	SaveApplication(ctx context.Context, application *Application) error
	ApplicationByID(ctx context.Context, id string) (*Application, error)
}

// OfferPublished is emitted when a sponsor publishes a new offer.
type OfferPublished struct {
	events.BaseEvent
	OfferID   string `json:"offer_id"`
	SponsorID string `json:"sponsor_id"`
	Sport     string `json:"sport,omitempty"`
}

// NewOfferPublished builds the event from the stored offer.
func NewOfferPublished(o *Offer, now time.Time) OfferPublished {
	return OfferPublished{
		BaseEvent: events.BaseEvent{
			Name:      "offer.published",
			Aggregate: o.ID,
			Time:      now.UTC(),
		},
		OfferID:   o.ID,
		SponsorID: o.SponsorID,
		Sport:     o.Sport,
	}
}
