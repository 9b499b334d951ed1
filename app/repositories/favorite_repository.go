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

// FavoriteRepository handles database operations for Favorite.
type FavoriteRepository struct{ c dbCollection }

func NewFavoriteRepository(db *mongo.Database, timeout time.Duration) *FavoriteRepository {
	return &FavoriteRepository{c: newCollection(db, database.Favorites, timeout)}
}

func (r *FavoriteRepository) Insert(ctx context.Context, f *models.Favorite) error {
	ctx, done := r.c.op(ctx, "insert")
	defer done()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	f.CreatedAt = now()
	_, err := r.c.col.InsertOne(ctx, f)
	return mapErr(err, MsgFavoriteNotFound, "", "could not add favorite")
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	ctx, done := r.c.op(ctx, "find")
	defer done()

	cur, err := r.c.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, mapErr(err, MsgFavoriteNotFound, "", "could not load favorites")
	}
	favs := []models.Favorite{}
	if err := cur.All(ctx, &favs); err != nil {
		return nil, mapErr(err, MsgFavoriteNotFound, "", "could not load favorites")
	}
	return favs, nil
}

func (r *FavoriteRepository) DeleteFirst(ctx context.Context, userID, plantID primitive.ObjectID) (*models.Favorite, error) {
	ctx, done := r.c.op(ctx, "delete")
	defer done()

	var f models.Favorite
	err := r.c.col.FindOneAndDelete(ctx, bson.M{"userId": userID, "plantId": plantID},
		options.FindOneAndDelete().SetSort(oldestFirst)).Decode(&f)
	if err != nil {
		return nil, mapErr(err, MsgFavoriteNotFound, "", "could not remove favorite")
	}
	return &f, nil
}
