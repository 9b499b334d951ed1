package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/pkg/collection"
	"github.com/shashiranjanraj/planty/pkg/database"
)

// PlantRepository handles database operations for Plant.
type PlantRepository struct{ c dbCollection }

func NewPlantRepository(db *mongo.Database, timeout time.Duration) *PlantRepository {
	return &PlantRepository{c: newCollection(db, database.Plants, timeout)}
}

func (r *PlantRepository) Create(ctx context.Context, p *models.Plant) error {
	ctx, done := r.c.op(ctx, "insert")
	defer done()

	ts := now()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = ts, ts
	_, err := r.c.col.InsertOne(ctx, p)
	return mapErr(err, MsgPlantNotFound, "", "could not create plant")
}

func (r *PlantRepository) FindByID(ctx context.Context, id string) (*models.Plant, error) {
	oid, err := ObjectID(id, MsgPlantNotFound)
	if err != nil {
		return nil, err
	}
	ctx, done := r.c.op(ctx, "find_one")
	defer done()

	var p models.Plant
	if err := r.c.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mapErr(err, MsgPlantNotFound, "", "could not load plant")
	}
	return &p, nil
}

// FindMany loads plants by id for expanding carts, favourites and orders.
func (r *PlantRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Plant, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.Plant{}, nil
	}
	plants, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	return collection.KeyBy(plants, func(p models.Plant) primitive.ObjectID { return p.ID }), nil
}

// List returns the catalogue, newest first, narrowed by f.
func (r *PlantRepository) List(ctx context.Context, f models.PlantFilter) ([]models.Plant, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *PlantRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Plant, error) {
	ctx, done := r.c.op(ctx, "find")
	defer done()

	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := r.c.col.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, mapErr(err, MsgPlantNotFound, "", "could not list plants")
	}
	plants := []models.Plant{}
	if err := cur.All(ctx, &plants); err != nil {
		return nil, mapErr(err, MsgPlantNotFound, "", "could not list plants")
	}
	return plants, nil
}

// Update applies the non-nil fields of patch and returns the stored result.
func (r *PlantRepository) Update(ctx context.Context, id string, patch models.PlantPatch) (*models.Plant, error) {
	oid, err := ObjectID(id, MsgPlantNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": now()}
	if patch.PlantName != nil {
		set["plantname"] = *patch.PlantName
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	ctx, done := r.c.op(ctx, "update")
	defer done()

	var p models.Plant
	err = r.c.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		return nil, mapErr(err, MsgPlantNotFound, "", "could not update plant")
	}
	return &p, nil
}

func (r *PlantRepository) Delete(ctx context.Context, id string) error {
	oid, err := ObjectID(id, MsgPlantNotFound)
	if err != nil {
		return err
	}
	ctx, done := r.c.op(ctx, "delete")
	defer done()

	res, err := r.c.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapErr(err, MsgPlantNotFound, "", "could not delete plant")
	}
	if res.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgPlantNotFound, "", "")
	}
	return nil
}
