// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// This package is imported by cmd/planty to ensure all migrations are
// registered at CLI startup.
package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// index is a named index on one collection. Up creates it, Down drops it
// by name.
type index struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
}

func (ix *index) Up(ctx context.Context, db *mongo.Database) error {
	opts := options.Index().SetName(ix.name)
	if ix.unique {
		opts.SetUnique(true)
	}
	_, err := db.Collection(ix.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: ix.keys, Options: opts})
	if err != nil {
		return fmt.Errorf("create index %s.%s: %w", ix.collection, ix.name, err)
	}
	return nil
}

func (ix *index) Down(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(ix.collection).Indexes().DropOne(ctx, ix.name); err != nil {
		return fmt.Errorf("drop index %s.%s: %w", ix.collection, ix.name, err)
	}
	return nil
}
