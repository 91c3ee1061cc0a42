package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/article"
	"riderlink/internal/domain/participant"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection("articles")}
}

var _ article.Repository = (*ArticleRepository)(nil)

func (r *ArticleRepository) ByID(ctx context.Context, id string) (*article.Article, error) {
	var doc articleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, article.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ArticleRepository) Save(ctx context.Context, agg *article.Article) error {
	doc := newArticleDocument(agg)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ArticleRepository) List(ctx context.Context, filter article.ListFilter) ([]*article.Article, int64, error) {
	query := bson.M{"status": string(article.StatusPublished)}
	if filter.AuthorID != "" {
		query["author_id"] = filter.AuthorID
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*article.Article
	for cur.Next(ctx) {
		var doc articleDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, total, cur.Err()
}

type articleDocument struct {
	ID         string   `bson:"_id"`
	AuthorID   string   `bson:"author_id"`
	AuthorType string   `bson:"author_type"`
	Title      string   `bson:"title"`
	Body       string   `bson:"body"`
	Tags       []string `bson:"tags,omitempty"`
	Status     string   `bson:"status"`
	CreatedAt  int64    `bson:"created_at"`
	UpdatedAt  int64    `bson:"updated_at"`
}

func newArticleDocument(a *article.Article) articleDocument {
	return articleDocument{
		ID:         a.ID,
		AuthorID:   a.Author.UserID,
		AuthorType: string(a.Author.UserType),
		Title:      a.Title,
		Body:       a.Body,
		Tags:       a.Tags,
		Status:     string(a.Status),
		CreatedAt:  timeToTimestamp(a.CreatedAt),
		UpdatedAt:  timeToTimestamp(a.UpdatedAt),
	}
}

func (d articleDocument) toAggregate() *article.Article {
	return &article.Article{
		ID:        d.ID,
		Author:    participant.Participant{UserID: d.AuthorID, UserType: participant.UserType(d.AuthorType)},
		Title:     d.Title,
		Body:      d.Body,
		Tags:      d.Tags,
		Status:    article.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
