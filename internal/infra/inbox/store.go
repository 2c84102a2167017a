package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store records which events a consumer has already handled.
type Store interface {
	// Seen records eventID and reports whether it had been recorded before.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Forget removes eventID so redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

type MongoStore struct {
	col      *mongo.Collection
	consumer string
}

func NewMongoStore(ctx context.Context, db *mongo.Database, consumer string) *MongoStore {
	col := db.Collection("app_inbox")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}}, Options: options.Index().SetUnique(true)})
	return &MongoStore{col: col, consumer: consumer}
}

func (s *MongoStore) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

func (s *MongoStore) Forget(ctx context.Context, eventID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"event_id": eventID, "consumer": s.consumer})
	return err
}

var _ Store = (*MongoStore)(nil)
