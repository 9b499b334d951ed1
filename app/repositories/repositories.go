// Package repositories persists the shop's documents in MongoDB.
//
// Every call runs under the configured per-call timeout and is timed into
// planty_db_query_duration_seconds. Driver errors are translated into
// apperr kinds here so services never inspect mongo errors themselves:
//
//	mongo.ErrNoDocuments / malformed id → NotFound
//	duplicate key (E11000)               → Conflict
//	anything else                        → Storage
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/metrics"
)

// Users is the user store.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	All(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// Plants is the catalogue store.
type Plants interface {
	Create(ctx context.Context, p *models.Plant) error
	FindByID(ctx context.Context, id string) (*models.Plant, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Plant, error)
	List(ctx context.Context, f models.PlantFilter) ([]models.Plant, error)
	Update(ctx context.Context, id string, patch models.PlantPatch) (*models.Plant, error)
	Delete(ctx context.Context, id string) error
}

// Carts stores cart lines.
type Carts interface {
	Insert(ctx context.Context, e *models.CartEntry) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartEntry, error)
	FindFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error)
	Update(ctx context.Context, e *models.CartEntry) error
	DeleteFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error)
}

// Favorites stores wish-list entries.
type Favorites interface {
	Insert(ctx context.Context, f *models.Favorite) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error)
	DeleteFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.Favorite, error)
}

// Orders stores orders.
type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id string) error
}

var (
	_ Users     = (*UserRepository)(nil)
	_ Plants    = (*PlantRepository)(nil)
	_ Carts     = (*CartRepository)(nil)
	_ Favorites = (*FavoriteRepository)(nil)
	_ Orders    = (*OrderRepository)(nil)
)

// Not-found messages shared with the services.
const (
	MsgUserNotFound     = "User not found"
	MsgPlantNotFound    = "Plant not found"
	MsgCartNotFound     = "Cart item not found"
	MsgFavoriteNotFound = "Favorite not found"
	MsgOrderNotFound    = "Order not found"
)

// ObjectID parses a hex id. A malformed id can never match a document, so
// it is reported with the caller's not-found message.
func ObjectID(hex, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return id, nil
}

// dbCollection bundles a mongo collection with the per-call timeout.
type dbCollection struct {
	col     *mongo.Collection
	timeout time.Duration
}

func newCollection(db *mongo.Database, name string, timeout time.Duration) dbCollection {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return dbCollection{col: db.Collection(name), timeout: timeout}
}

// op starts a timed operation. The returned func must be deferred.
func (c dbCollection) op(ctx context.Context, operation string) (context.Context, func()) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		metrics.ObserveDBQuery(c.col.Name(), operation, start)
	}
}

// mapErr translates a driver error. conflict may be empty when the
// collection has no unique index.
func mapErr(err error, notFound, conflict, failure string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound(notFound)
	case conflict != "" && mongo.IsDuplicateKeyError(err):
		return apperr.Conflict(conflict)
	}
	return apperr.Storage(failure, err)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
