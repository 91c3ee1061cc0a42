package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/rider"
)

// millisPerYear is 365.25 days, matching the age formula used by the search
// filter so database-side and in-memory filtering agree.
const millisPerYear = 365.25 * 24 * 60 * 60 * 1000

type RiderRepository struct {
	col *mongo.Collection
}

func NewRiderRepository(db *mongo.Database) *RiderRepository {
	return &RiderRepository{col: db.Collection("riders")}
}

var _ rider.Repository = (*RiderRepository)(nil)

func (r *RiderRepository) ByID(ctx context.Context, id string) (*rider.Rider, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RiderRepository) ByEmail(ctx context.Context, email string) (*rider.Rider, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *RiderRepository) findOne(ctx context.Context, filter bson.M) (*rider.Rider, error) {
	var doc riderDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rider.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RiderRepository) Save(ctx context.Context, agg *rider.Rider) error {
	doc := newRiderDocument(agg)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return rider.ErrEmailAlreadyUsed
	}
	return err
}

// Search runs the aggregation pipeline built from the filters. Age is derived
// inside the pipeline from the stored birth date, all filter dimensions are
// ANDed, and sensitive fields never leave the database.
func (r *RiderRepository) Search(ctx context.Context, filters rider.SearchFilters) ([]*rider.Rider, error) {
	pipeline := searchStages(filters)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: searchSort(filters)}},
		bson.D{{Key: "$skip", Value: filters.Offset()}},
		bson.D{{Key: "$limit", Value: filters.Limit}},
		bson.D{{Key: "$project", Value: bson.M{
			"password_hash":          0,
			"linked_accounts.secret": 0,
		}}},
	)
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*rider.Rider
	for cur.Next(ctx) {
		var doc riderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Count shares the exact filter stages with Search so totals and pages agree.
func (r *RiderRepository) Count(ctx context.Context, filters rider.SearchFilters) (int64, error) {
	pipeline := append(searchStages(filters), bson.D{{Key: "$count", Value: "total"}})
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		return row.Total, nil
	}
	return 0, cur.Err()
}

func (r *RiderRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return rider.ErrNotFound
	}
	return nil
}

func (r *RiderRepository) PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error) {
	if len(ids) == 0 {
		return map[string]profile.Preview{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "status": string(rider.StatusActive)}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	previews := make(map[string]profile.Preview, len(ids))
	for cur.Next(ctx) {
		var doc riderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		previews[doc.ID] = doc.toAggregate().Preview()
	}
	return previews, cur.Err()
}

// searchStages builds the shared $match/$addFields prefix of the search
// pipeline. The active-status restriction is unconditional.
func searchStages(filters rider.SearchFilters) mongo.Pipeline {
	match := bson.M{"status": string(rider.StatusActive)}
	if len(filters.Sports) > 0 {
		match["sports"] = bson.M{"$in": filters.Sports}
	}
	if len(filters.Languages) > 0 {
		match["languages"] = bson.M{"$in": filters.Languages}
	}
	if len(filters.SocialNetworks) > 0 {
		match["linked_accounts.network"] = bson.M{"$in": filters.SocialNetworks}
	}
	if filters.Country != "" {
		match["identity.country"] = containsRegex(filters.Country)
	}
	if filters.Gender != "" {
		match["identity.gender"] = string(filters.Gender)
	}
	if filters.ContractType != "" {
		match["contract_type"] = string(filters.ContractType)
	}
	if filters.Availability != nil {
		match["availability"] = *filters.Availability
	}
	if filters.Query != "" {
		q := containsRegex(filters.Query)
		match["$or"] = bson.A{
			bson.M{"display_name": q},
			bson.M{"username": q},
			bson.M{"identity.full_name": q},
			bson.M{"bio": q},
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{"age": bson.M{"$divide": bson.A{
			bson.M{"$subtract": bson.A{"$$NOW", bson.M{"$toDate": "$identity.birth_date"}}},
			millisPerYear,
		}}}}},
	}

	age := bson.M{}
	if filters.Age.Min > 0 {
		age["$gte"] = filters.Age.Min
	}
	if filters.Age.Max > 0 {
		age["$lte"] = filters.Age.Max
	}
	if len(age) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"age": age}}})
	}
	return pipeline
}

func searchSort(filters rider.SearchFilters) bson.D {
	field := map[rider.SearchSort]string{
		rider.SortByViews:   "views",
		rider.SortByCreated: "created_at",
		rider.SortByAge:     "age",
	}[filters.Sort]
	direction := 1
	if filters.Direction == rider.SortDesc {
		direction = -1
	}
	// Secondary key keeps pagination stable across ties.
	return bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}}
}

func containsRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

type riderDocument struct {
	ID             string                  `bson:"_id"`
	Email          string                  `bson:"email"`
	Username       string                  `bson:"username"`
	DisplayName    string                  `bson:"display_name"`
	AvatarURL      string                  `bson:"avatar_url,omitempty"`
	Bio            string                  `bson:"bio,omitempty"`
	Identity       riderIdentityDocument   `bson:"identity"`
	Sports         []string                `bson:"sports,omitempty"`
	Languages      []string                `bson:"languages,omitempty"`
	LinkedAccounts []linkedAccountDocument `bson:"linked_accounts,omitempty"`
	Availability   bool                    `bson:"availability"`
	ContractType   string                  `bson:"contract_type,omitempty"`
	Views          int64                   `bson:"views"`
	Status         string                  `bson:"status"`
	PasswordHash   string                  `bson:"password_hash,omitempty"`
	CreatedAt      int64                   `bson:"created_at"`
	UpdatedAt      int64                   `bson:"updated_at"`
}

type riderIdentityDocument struct {
	FirstName string `bson:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty"`
	FullName  string `bson:"full_name,omitempty"`
	BirthDate int64  `bson:"birth_date,omitempty"`
	Gender    string `bson:"gender,omitempty"`
	Country   string `bson:"country,omitempty"`
}

type linkedAccountDocument struct {
	Network   string `bson:"network"`
	Handle    string `bson:"handle"`
	Secret    string `bson:"secret,omitempty"`
	Followers int64  `bson:"followers"`
}

func newRiderDocument(r *rider.Rider) riderDocument {
	doc := riderDocument{
		ID:          r.ID,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		Bio:         r.Bio,
		Identity: riderIdentityDocument{
			FirstName: r.Identity.FirstName,
			LastName:  r.Identity.LastName,
			FullName:  r.Identity.FullName,
			BirthDate: timeToTimestamp(r.Identity.BirthDate),
			Gender:    string(r.Identity.Gender),
			Country:   r.Identity.Country,
		},
		Sports:       r.Sports,
		Languages:    r.Languages,
		Availability: r.Availability,
		ContractType: string(r.ContractType),
		Views:        r.Views,
		Status:       string(r.Status),
		PasswordHash: r.PasswordHash,
		CreatedAt:    timeToTimestamp(r.CreatedAt),
		UpdatedAt:    timeToTimestamp(r.UpdatedAt),
	}
	for _, acc := range r.LinkedAccounts {
		doc.LinkedAccounts = append(doc.LinkedAccounts, linkedAccountDocument{
			Network:   acc.Network,
			Handle:    acc.Handle,
			Secret:    acc.Secret,
			Followers: acc.Followers,
		})
	}
	return doc
}

func (d riderDocument) toAggregate() *rider.Rider {
	agg := &rider.Rider{
		ID:          d.ID,
		Email:       d.Email,
		Username:    d.Username,
		DisplayName: d.DisplayName,
		AvatarURL:   d.AvatarURL,
		Bio:         d.Bio,
		Identity: rider.Identity{
			FirstName: d.Identity.FirstName,
			LastName:  d.Identity.LastName,
			FullName:  d.Identity.FullName,
			BirthDate: timestampToTime(d.Identity.BirthDate),
			Gender:    rider.Gender(d.Identity.Gender),
			Country:   d.Identity.Country,
		},
		Sports:       d.Sports,
		Languages:    d.Languages,
		Availability: d.Availability,
		ContractType: rider.ContractType(d.ContractType),
		Views:        d.Views,
		Status:       rider.Status(d.Status),
		PasswordHash: d.PasswordHash,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
	for _, acc := range d.LinkedAccounts {
		agg.LinkedAccounts = append(agg.LinkedAccounts, rider.LinkedAccount{
			Network:   acc.Network,
			Handle:    acc.Handle,
			Secret:    acc.Secret,
			Followers: acc.Followers,
		})
	}
	return agg
}
