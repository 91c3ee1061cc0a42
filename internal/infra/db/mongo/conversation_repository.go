package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
)

type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection("conversations")}
}

var _ chat.ConversationRepository = (*ConversationRepository)(nil)

func (r *ConversationRepository) ByID(ctx context.Context, id string) (*chat.Conversation, error) {
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ConversationRepository) FindActive(ctx context.Context, pairKey string, contextType chat.ContextType) (*chat.Conversation, error) {
	filter := bson.M{
		"pair_key":     pairKey,
		"context_type": string(contextType),
		"status":       string(chat.StatusActive),
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var doc conversationDocument
	if err := r.col.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chat.ErrConversationNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ConversationRepository) Insert(ctx context.Context, conversation *chat.Conversation) error {
	_, err := r.col.InsertOne(ctx, newConversationDocument(conversation))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return chat.ErrConversationExists
		}
		return err
	}
	return nil
}

func (r *ConversationRepository) ListForParticipant(ctx context.Context, filter chat.ListFilter) ([]*chat.Conversation, int64, error) {
	query := bson.M{
		"status": string(chat.StatusActive),
		"participants": bson.M{"$elemMatch": bson.M{
			"user_id":   filter.Participant.UserID,
			"user_type": string(filter.Participant.UserType),
		}},
	}
	if filter.ContextType != "" {
		query["context_type"] = string(filter.ContextType)
	}
	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*chat.Conversation
	for cur.Next(ctx) {
		var doc conversationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		agg, err := doc.toAggregate()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, agg)
	}
	return out, total, cur.Err()
}

func (r *ConversationRepository) ActiveIDsForParticipant(ctx context.Context, p participant.Participant) ([]string, error) {
	query := bson.M{
		"status": string(chat.StatusActive),
		"participants": bson.M{"$elemMatch": bson.M{
			"user_id":   p.UserID,
			"user_type": string(p.UserType),
		}},
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func (r *ConversationRepository) SetStatus(ctx context.Context, id string, status chat.Status, now time.Time) error {
	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": timeToTimestamp(now)}}
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chat.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) TouchUpdatedAt(ctx context.Context, id string, now time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": timeToTimestamp(now)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chat.ErrConversationNotFound
	}
	return nil
}

type conversationDocument struct {
	ID           string                `bson:"_id"`
	PairKey      string                `bson:"pair_key"`
	Participants []participantDocument `bson:"participants"`
	ContextType  string                `bson:"context_type"`
	ReferenceID  string                `bson:"reference_id,omitempty"`
	Status       string                `bson:"status"`
	CreatedAt    int64                 `bson:"created_at"`
	UpdatedAt    int64                 `bson:"updated_at"`
}

type participantDocument struct {
	UserID   string `bson:"user_id"`
	UserType string `bson:"user_type"`
}

func newConversationDocument(c *chat.Conversation) conversationDocument {
	doc := conversationDocument{
		ID:      c.ID,
		PairKey: c.PairKey,
		Participants: []participantDocument{
			{UserID: c.Participants[0].UserID, UserType: string(c.Participants[0].UserType)},
			{UserID: c.Participants[1].UserID, UserType: string(c.Participants[1].UserType)},
		},
		ContextType: string(c.ContextType()),
		Status:      string(c.Status),
		CreatedAt:   timeToTimestamp(c.CreatedAt),
		UpdatedAt:   timeToTimestamp(c.UpdatedAt),
	}
	if c.Context != nil {
		doc.ReferenceID = c.Context.ReferenceID
	}
	return doc
}

func (d conversationDocument) toAggregate() (*chat.Conversation, error) {
	if len(d.Participants) != 2 {
		return nil, chat.ErrParticipantsRequired
	}
	agg := &chat.Conversation{
		ID:      d.ID,
		PairKey: d.PairKey,
		Participants: [2]participant.Participant{
			{UserID: d.Participants[0].UserID, UserType: participant.UserType(d.Participants[0].UserType)},
			{UserID: d.Participants[1].UserID, UserType: participant.UserType(d.Participants[1].UserType)},
		},
		Status:    chat.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
	if d.ContextType != "" {
		agg.Context = &chat.Context{Type: chat.ContextType(d.ContextType), ReferenceID: d.ReferenceID}
	}
	return agg, nil
}
