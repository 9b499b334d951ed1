package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/pkg/database"
)

// oldestFirst picks the earliest matching row when several lines share a
// (user, plant) pair. ObjectIDs are time-ordered.
var oldestFirst = bson.D{{Key: "_id", Value: 1}}

// CartRepository handles database operations for CartEntry.
type CartRepository struct{ c dbCollection }

func NewCartRepository(db *mongo.Database, timeout time.Duration) *CartRepository {
	return &CartRepository{c: newCollection(db, database.Carts, timeout)}
}

// Insert always adds a new line, even when the user already has the plant
// in their cart.
func (r *CartRepository) Insert(ctx context.Context, e *models.CartEntry) error {
	ctx, done := r.c.op(ctx, "insert")
	defer done()

	ts := now()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt, e.UpdatedAt = ts, ts
	_, err := r.c.col.InsertOne(ctx, e)
	return mapErr(err, MsgCartNotFound, "", "could not add to cart")
}

func (r *CartRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartEntry, error) {
	ctx, done := r.c.op(ctx, "find")
	defer done()

	cur, err := r.c.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, mapErr(err, MsgCartNotFound, "", "could not load cart")
	}
	entries := []models.CartEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, mapErr(err, MsgCartNotFound, "", "could not load cart")
	}
	return entries, nil
}

// FindFirst returns the oldest line for the pair.
func (r *CartRepository) FindFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error) {
	ctx, done := r.c.op(ctx, "find_one")
	defer done()

	var e models.CartEntry
	err := r.c.col.FindOne(ctx, bson.M{"userId": userID, "plantId": plantID},
		options.FindOne().SetSort(oldestFirst)).Decode(&e)
	if err != nil {
		return nil, mapErr(err, MsgCartNotFound, "", "could not load cart")
	}
	return &e, nil
}

func (r *CartRepository) Update(ctx context.Context, e *models.CartEntry) error {
	ctx, done := r.c.op(ctx, "replace")
	defer done()

	e.UpdatedAt = now()
	res, err := r.c.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return mapErr(err, MsgCartNotFound, "", "could not update cart")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgCartNotFound, "", "")
	}
	return nil
}

// DeleteFirst removes and returns the oldest line for the pair.
func (r *CartRepository) DeleteFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.CartEntry, error) {
	ctx, done := r.c.op(ctx, "delete")
	defer done()

	var e models.CartEntry
	err := r.c.col.FindOneAndDelete(ctx, bson.M{"userId": userID, "plantId": plantID},
		options.FindOneAndDelete().SetSort(oldestFirst)).Decode(&e)
	if err != nil {
		return nil, mapErr(err, MsgCartNotFound, "", "could not remove from cart")
	}
	return &e, nil
}
