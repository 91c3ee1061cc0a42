package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/offer"
)

type OfferRepository struct {
	offers       *mongo.Collection
	applications *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{
		offers:       db.Collection("offers"),
		applications: db.Collection("applications"),
	}
}

var _ offer.Repository = (*OfferRepository)(nil)

func (r *OfferRepository) ByID(ctx context.Context, id string) (*offer.Offer, error) {
	var doc offerDocument
	if err := r.offers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, offer.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *OfferRepository) Save(ctx context.Context, agg *offer.Offer) error {
	doc := newOfferDocument(agg)
	opts := options.Replace().SetUpsert(true)
	_, err := r.offers.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *OfferRepository) List(ctx context.Context, filter offer.ListFilter) ([]*offer.Offer, int64, error) {
	query := bson.M{"status": bson.M{"$ne": string(offer.StatusDeleted)}}
	if filter.OnlyOpen {
		query["status"] = string(offer.StatusOpen)
	}
	if filter.SponsorID != "" {
		query["sponsor_id"] = filter.SponsorID
	}
	if filter.Sport != "" {
		query["sport"] = filter.Sport
	}
	if filter.ContractType != "" {
		query["contract_type"] = filter.ContractType
	}
	total, err := r.offers.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.offers.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*offer.Offer
	for cur.Next(ctx) {
		var doc offerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, total, cur.Err()
}

func (r *OfferRepository) InsertApplication(ctx context.Context, application *offer.Application) error {
	_, err := r.applications.InsertOne(ctx, newApplicationDocument(application))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return offer.ErrApplicationExists
		}
		return err
	}
	return nil
}

func (r *OfferRepository) ApplicationsByOffer(ctx context.Context, offerID string, offset, limit int) ([]*offer.Application, int64, error) {
	return r.listApplications(ctx, bson.M{"offer_id": offerID}, offset, limit)
}

func (r *OfferRepository) ApplicationsByRider(ctx context.Context, riderID string, offset, limit int) ([]*offer.Application, int64, error) {
	return r.listApplications(ctx, bson.M{"rider_id": riderID}, offset, limit)
}

func (r *OfferRepository) listApplications(ctx context.Context, query bson.M, offset, limit int) ([]*offer.Application, int64, error) {
	total, err := r.applications.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.applications.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*offer.Application
	for cur.Next(ctx) {
		var doc applicationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, total, cur.Err()
}

func (r *OfferRepository) SaveApplication(ctx context.Context, application *offer.Application) error {
	doc := newApplicationDocument(application)
	opts := options.Replace().SetUpsert(true)
	_, err := r.applications.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *OfferRepository) ApplicationByID(ctx context.Context, id string) (*offer.Application, error) {
	var doc applicationDocument
	if err := r.applications.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, offer.ErrApplicationMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type offerDocument struct {
	ID           string `bson:"_id"`
	SponsorID    string `bson:"sponsor_id"`
	Title        string `bson:"title"`
	Description  string `bson:"description,omitempty"`
	Sport        string `bson:"sport,omitempty"`
	ContractType string `bson:"contract_type,omitempty"`
	Country      string `bson:"country,omitempty"`
	Status       string `bson:"status"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newOfferDocument(o *offer.Offer) offerDocument {
	return offerDocument{
		ID:           o.ID,
		SponsorID:    o.SponsorID,
		Title:        o.Title,
		Description:  o.Description,
		Sport:        o.Sport,
		ContractType: o.ContractType,
		Country:      o.Country,
		Status:       string(o.Status),
		CreatedAt:    timeToTimestamp(o.CreatedAt),
		UpdatedAt:    timeToTimestamp(o.UpdatedAt),
	}
}

func (d offerDocument) toAggregate() *offer.Offer {
	return &offer.Offer{
		ID:           d.ID,
		SponsorID:    d.SponsorID,
		Title:        d.Title,
		Description:  d.Description,
		Sport:        d.Sport,
		ContractType: d.ContractType,
		Country:      d.Country,
		Status:       offer.Status(d.Status),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

type applicationDocument struct {
	ID        string `bson:"_id"`
	OfferID   string `bson:"offer_id"`
	RiderID   string `bson:"rider_id"`
	Message   string `bson:"message,omitempty"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newApplicationDocument(a *offer.Application) applicationDocument {
	return applicationDocument{
		ID:        a.ID,
		OfferID:   a.OfferID,
		RiderID:   a.RiderID,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: timeToTimestamp(a.CreatedAt),
		UpdatedAt: timeToTimestamp(a.UpdatedAt),
	}
}

func (d applicationDocument) toAggregate() *offer.Application {
	return &offer.Application{
		ID:        d.ID,
		OfferID:   d.OfferID,
		RiderID:   d.RiderID,
		Message:   d.Message,
		Status:    offer.ApplicationStatus(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
