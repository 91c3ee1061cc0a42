package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/sponsor"
)

type SponsorRepository struct {
	col *mongo.Collection
}

func NewSponsorRepository(db *mongo.Database) *SponsorRepository {
	return &SponsorRepository{col: db.Collection("sponsors")}
}

var _ sponsor.Repository = (*SponsorRepository)(nil)

func (r *SponsorRepository) ByID(ctx context.Context, id string) (*sponsor.Sponsor, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *SponsorRepository) ByEmail(ctx context.Context, email string) (*sponsor.Sponsor, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *SponsorRepository) findOne(ctx context.Context, filter bson.M) (*sponsor.Sponsor, error) {
	var doc sponsorDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sponsor.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SponsorRepository) Save(ctx context.Context, agg *sponsor.Sponsor) error {
	doc := newSponsorDocument(agg)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return sponsor.ErrEmailAlreadyUsed
	}
	return err
}

func (r *SponsorRepository) PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error) {
	if len(ids) == 0 {
		return map[string]profile.Preview{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "status": string(sponsor.StatusActive)}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	previews := make(map[string]profile.Preview, len(ids))
	for cur.Next(ctx) {
		var doc sponsorDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		previews[doc.ID] = doc.toAggregate().Preview()
	}
	return previews, cur.Err()
}

type sponsorDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	CompanyName  string `bson:"company_name"`
	DisplayName  string `bson:"display_name"`
	AvatarURL    string `bson:"avatar_url,omitempty"`
	ContactName  string `bson:"contact_name,omitempty"`
	Website      string `bson:"website,omitempty"`
	Country      string `bson:"country,omitempty"`
	About        string `bson:"about,omitempty"`
	Status       string `bson:"status"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newSponsorDocument(s *sponsor.Sponsor) sponsorDocument {
	return sponsorDocument{
		ID:           s.ID,
		Email:        s.Email,
		CompanyName:  s.CompanyName,
		DisplayName:  s.DisplayName,
		AvatarURL:    s.AvatarURL,
		ContactName:  s.ContactName,
		Website:      s.Website,
		Country:      s.Country,
		About:        s.About,
		Status:       string(s.Status),
		PasswordHash: s.PasswordHash,
		CreatedAt:    timeToTimestamp(s.CreatedAt),
		UpdatedAt:    timeToTimestamp(s.UpdatedAt),
	}
}

func (d sponsorDocument) toAggregate() *sponsor.Sponsor {
	return &sponsor.Sponsor{
		ID:           d.ID,
		Email:        d.Email,
		CompanyName:  d.CompanyName,
		DisplayName:  d.DisplayName,
		AvatarURL:    d.AvatarURL,
		ContactName:  d.ContactName,
		Website:      d.Website,
		Country:      d.Country,
		About:        d.About,
		Status:       sponsor.Status(d.Status),
		PasswordHash: d.PasswordHash,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}
