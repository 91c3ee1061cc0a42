package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riderlink/internal/domain/chat"
	"riderlink/internal/domain/participant"
)

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection("messages")}
}

var _ chat.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Insert(ctx context.Context, message *chat.Message) error {
	_, err := r.col.InsertOne(ctx, newMessageDocument(message))
	return err
}

func (r *MessageRepository) ListByConversation(ctx context.Context, page chat.MessagePage) ([]*chat.Message, int64, error) {
	filter := bson.M{"conversation_id": page.ConversationID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*chat.Message
	for cur.Next(ctx) {
		var doc messageDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, total, cur.Err()
}

func (r *MessageRepository) LastByConversation(ctx context.Context, conversationIDs []string) (map[string]*chat.Message, error) {
	if len(conversationIDs) == 0 {
		return map[string]*chat.Message{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"conversation_id": bson.M{"$in": conversationIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$conversation_id", "last": bson.M{"$first": "$$ROOT"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make(map[string]*chat.Message, len(conversationIDs))
	for cur.Next(ctx) {
		var row struct {
			ID   string          `bson:"_id"`
			Last messageDocument `bson:"last"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.Last.toAggregate()
	}
	return result, cur.Err()
}

func (r *MessageRepository) UnreadByConversation(ctx context.Context, conversationIDs []string, p participant.Participant) ([]chat.UnreadCount, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: unreadFilter(bson.M{"conversation_id": bson.M{"$in": conversationIDs}}, p)}},
		{{Key: "$group", Value: bson.M{"_id": "$conversation_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []chat.UnreadCount
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, chat.UnreadCount{ConversationID: row.ID, Count: row.Count})
	}
	return out, cur.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, messageIDs []string, p participant.Participant, now time.Time) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	return r.pushReceipts(ctx, noReceiptFilter(bson.M{"_id": bson.M{"$in": messageIDs}}, p), p, now)
}

func (r *MessageRepository) MarkAllRead(ctx context.Context, conversationID string, p participant.Participant, now time.Time) (int64, error) {
	return r.pushReceipts(ctx, unreadFilter(bson.M{"conversation_id": conversationID}, p), p, now)
}

// pushReceipts appends a receipt to every message matching filter. Callers
// embed the receipt-absence predicate in the filter, which makes the
// operation idempotent without a read-modify-write cycle.
func (r *MessageRepository) pushReceipts(ctx context.Context, filter bson.M, p participant.Participant, now time.Time) (int64, error) {
	update := bson.M{
		"$push": bson.M{"read_by": readReceiptDocument{
			UserID:   p.UserID,
			UserType: string(p.UserType),
			ReadAt:   timeToTimestamp(now),
		}},
		"$set": bson.M{"updated_at": timeToTimestamp(now)},
	}
	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// noReceiptFilter narrows base to messages carrying no receipt for
// (user id, user type).
func noReceiptFilter(base bson.M, p participant.Participant) bson.M {
	filter := bson.M{
		"read_by": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"user_id":   p.UserID,
			"user_type": string(p.UserType),
		}}},
	}
	for k, v := range base {
		filter[k] = v
	}
	return filter
}

// unreadFilter narrows base to messages unread by p: not sent by p's user id
// and carrying no receipt for (user id, user type).
func unreadFilter(base bson.M, p participant.Participant) bson.M {
	filter := noReceiptFilter(base, p)
	filter["sender_id"] = bson.M{"$ne": p.UserID}
	return filter
}

type messageDocument struct {
	ID             string                `bson:"_id"`
	ConversationID string                `bson:"conversation_id"`
	SenderID       string                `bson:"sender_id"`
	SenderType     string                `bson:"sender_type"`
	Content        string                `bson:"content"`
	MessageType    string                `bson:"message_type"`
	ReadBy         []readReceiptDocument `bson:"read_by"`
	CreatedAt      int64                 `bson:"created_at"`
	UpdatedAt      int64                 `bson:"updated_at"`
}

type readReceiptDocument struct {
	UserID   string `bson:"user_id"`
	UserType string `bson:"user_type"`
	ReadAt   int64  `bson:"read_at"`
}

func newMessageDocument(m *chat.Message) messageDocument {
	doc := messageDocument{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.Sender.UserID,
		SenderType:     string(m.Sender.UserType),
		Content:        m.Content,
		MessageType:    string(m.Type),
		ReadBy:         make([]readReceiptDocument, 0, len(m.ReadBy)),
		CreatedAt:      timeToTimestamp(m.CreatedAt),
		UpdatedAt:      timeToTimestamp(m.UpdatedAt),
	}
	for _, receipt := range m.ReadBy {
		doc.ReadBy = append(doc.ReadBy, readReceiptDocument{
			UserID:   receipt.UserID,
			UserType: string(receipt.UserType),
			ReadAt:   timeToTimestamp(receipt.ReadAt),
		})
	}
	return doc
}

func (d messageDocument) toAggregate() *chat.Message {
	msg := &chat.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		Sender:         participant.Participant{UserID: d.SenderID, UserType: participant.UserType(d.SenderType)},
		Content:        d.Content,
		Type:           chat.MessageType(d.MessageType),
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
	for _, receipt := range d.ReadBy {
		msg.ReadBy = append(msg.ReadBy, chat.ReadReceipt{
			UserID:   receipt.UserID,
			UserType: participant.UserType(receipt.UserType),
			ReadAt:   timestampToTime(receipt.ReadAt),
		})
	}
	return msg
}
