// Package database owns the MongoDB connection.
//
// Connect is called once at boot; repositories receive *mongo.Database or
// a *mongo.Collection from it.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	Users     = "users"
	Plants    = "plants"
	Carts     = "carts"
	Favorites = "favorites"
	Orders    = "orders"
	Logs      = "app_logs"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Connect dials uri, pings the primary and selects database name.
// It returns an error instead of exiting so the caller can shut down
// gracefully.
func Connect(ctx context.Context, uri, name string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(2 * time.Minute).
		SetServerSelectionTimeout(timeout)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("database: ping: %w", err)
	}

	Client = c
	DB = c.Database(name)
	return nil
}

// Ping reports whether the primary is reachable. It is the readiness probe
// behind the gRPC health service.
func Ping(ctx context.Context) error {
	if Client == nil {
		return fmt.Errorf("database: not connected")
	}
	return Client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the pool. Safe to call when never connected.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	err := Client.Disconnect(ctx)
	Client, DB = nil, nil
	return err
}

// Collection returns a handle on name in the connected database.
func Collection(name string) *mongo.Collection {
	return DB.Collection(name)
}
