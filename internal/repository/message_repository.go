package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const MessagesCollection = "messages"

// Message is a chat entry. ChatID is the lead ID before conversion and the
// project ID afterwards.
type Message struct {
	ID         string            `bson:"_id"`
	ChatID     string            `bson:"chatId"`
	SenderID   string            `bson:"senderId"`
	SenderRole string            `bson:"senderRole"`
	Type       string            `bson:"type"`
	Content    string            `bson:"content"`
	Metadata   map[string]string `bson:"metadata,omitempty"`
	Status     string            `bson:"status"`
	SentAt     time.Time         `bson:"sentAt"`
	ReadAt     *time.Time        `bson:"readAt,omitempty"`
	CopiedFrom *string           `bson:"copiedFrom,omitempty"`
	Deleted    bool              `bson:"deleted"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id string) (*Message, error)
	// FindByChat returns up to limit messages older than before, oldest first.
	FindByChat(ctx context.Context, chatID string, before *time.Time, limit int) ([]*Message, error)
	// FindInRange returns messages with from <= sentAt < to, oldest first.
	FindInRange(ctx context.Context, chatID string, from, to time.Time) ([]*Message, error)
	InsertMany(ctx context.Context, msgs []*Message) error
	DeleteByIDs(ctx context.Context, ids []string) error
	MarkRead(ctx context.Context, chatID, readerID string, at time.Time) (int64, error)
	SoftDelete(ctx context.Context, id, senderID string) (bool, error)
}

type mongoMessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{col: db.Collection(MessagesCollection)}
}

func (r *mongoMessageRepository) Create(ctx context.Context, msg *Message) error {
	_, err := r.col.InsertOne(ctx, msg)
	return err
}

func (r *mongoMessageRepository) FindByID(ctx context.Context, id string) (*Message, error) {
	var m Message
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMessageRepository) FindByChat(ctx context.Context, chatID string, before *time.Time, limit int) ([]*Message, error) {
	filter := bson.M{"chatId": chatID, "deleted": false}
	if before != nil {
		filter["sentAt"] = bson.M{"$lt": *before}
	}
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sentAt", Value: -1}}).
		SetLimit(int64(limit))

	msgs, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *mongoMessageRepository) FindInRange(ctx context.Context, chatID string, from, to time.Time) ([]*Message, error) {
	filter := bson.M{
		"chatId":  chatID,
		"deleted": false,
		"sentAt":  bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoMessageRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*Message, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := make([]*Message, 0)
	for cursor.Next(ctx) {
		var m Message
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, cursor.Err()
}

func (r *mongoMessageRepository) InsertMany(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(msgs))
	for i, m := range msgs {
		docs[i] = m
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *mongoMessageRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, chatID, readerID string, at time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx, bson.M{
		"chatId":   chatID,
		"senderId": bson.M{"$ne": readerID},
		"status":   bson.M{"$ne": "read"},
	}, bson.M{
		"$set": bson.M{"status": "read", "readAt": at},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoMessageRepository) SoftDelete(ctx context.Context, id, senderID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "senderId": senderID}, bson.M{
		"$set": bson.M{"deleted": true},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
