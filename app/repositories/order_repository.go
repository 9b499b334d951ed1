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

// OrderRepository handles database operations for Order.
type OrderRepository struct{ c dbCollection }

func NewOrderRepository(db *mongo.Database, timeout time.Duration) *OrderRepository {
	return &OrderRepository{c: newCollection(db, database.Orders, timeout)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	ctx, done := r.c.op(ctx, "insert")
	defer done()

	ts := now()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt, o.UpdatedAt = ts, ts
	_, err := r.c.col.InsertOne(ctx, o)
	return mapErr(err, MsgOrderNotFound, "", "could not create order")
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := ObjectID(id, MsgOrderNotFound)
	if err != nil {
		return nil, err
	}
	ctx, done := r.c.op(ctx, "find_one")
	defer done()

	var o models.Order
	if err := r.c.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		return nil, mapErr(err, MsgOrderNotFound, "", "could not load order")
	}
	return &o, nil
}

// All returns every order, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	ctx, done := r.c.op(ctx, "find")
	defer done()

	cur, err := r.c.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(err, MsgOrderNotFound, "", "could not list orders")
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, mapErr(err, MsgOrderNotFound, "", "could not list orders")
	}
	return orders, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *models.Order) error {
	ctx, done := r.c.op(ctx, "replace")
	defer done()

	o.UpdatedAt = now()
	res, err := r.c.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return mapErr(err, MsgOrderNotFound, "", "could not update order")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgOrderNotFound, "", "")
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := ObjectID(id, MsgOrderNotFound)
	if err != nil {
		return err
	}
	ctx, done := r.c.op(ctx, "delete")
	defer done()

	res, err := r.c.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapErr(err, MsgOrderNotFound, "", "could not delete order")
	}
	if res.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgOrderNotFound, "", "")
	}
	return nil
}
