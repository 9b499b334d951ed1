package queue

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// FailedCollection holds events that could not be delivered.
const FailedCollection = "failed_events"

// FailedMessage is an event that exhausted its retries.
type FailedMessage struct {
	Event    string    `bson:"event"     json:"event"`
	Payload  string    `bson:"payload"   json:"payload"`
	Error    string    `bson:"error"     json:"error"`
	Attempts int       `bson:"attempts"  json:"attempts"`
	FailedAt time.Time `bson:"failed_at" json:"failed_at"`
}

// FailedStore persists undeliverable events for later replay.
type FailedStore interface {
	Save(ctx context.Context, f FailedMessage) error
}

type mongoFailedStore struct{ col *mongo.Collection }

func NewMongoFailedStore(db *mongo.Database) FailedStore {
	return mongoFailedStore{col: db.Collection(FailedCollection)}
}

func (s mongoFailedStore) Save(ctx context.Context, f FailedMessage) error {
	_, err := s.col.InsertOne(ctx, f)
	return err
}
