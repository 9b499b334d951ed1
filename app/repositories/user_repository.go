package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/pkg/collection"
	"github.com/shashiranjanraj/planty/pkg/database"
)

// MsgEmailTaken is the conflict raised by the unique email index.
const MsgEmailTaken = "Email already exists"

// UserRepository handles database operations for User.
type UserRepository struct{ c dbCollection }

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{c: newCollection(db, database.Users, timeout)}
}

// Create inserts u and fills in its id. Uniqueness of the email is left to
// the index so two concurrent registrations cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, done := r.c.op(ctx, "insert")
	defer done()

	ts := now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = ts, ts
	_, err := r.c.col.InsertOne(ctx, u)
	return mapErr(err, MsgUserNotFound, MsgEmailTaken, "could not create user")
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := ObjectID(id, MsgUserNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, done := r.c.op(ctx, "find_one")
	defer done()

	var u models.User
	if err := r.c.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapErr(err, MsgUserNotFound, "", "could not load user")
	}
	return &u, nil
}

// FindMany loads the users with the given ids, keyed by id. Missing ids are
// simply absent from the map.
func (r *UserRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.User{}, nil
	}
	users, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return collection.KeyBy(users, func(u models.User) primitive.ObjectID { return u.ID }), nil
}

// All returns every user, oldest first.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	ctx, done := r.c.op(ctx, "find")
	defer done()

	cur, err := r.c.col.Find(ctx, filter)
	if err != nil {
		return nil, mapErr(err, MsgUserNotFound, "", "could not list users")
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, mapErr(err, MsgUserNotFound, "", "could not list users")
	}
	return users, nil
}

// Update replaces the stored document with u. Cleared optional fields
// (otp, otpExpires) are dropped from the document.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	ctx, done := r.c.op(ctx, "replace")
	defer done()

	u.UpdatedAt = now()
	res, err := r.c.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return mapErr(err, MsgUserNotFound, MsgEmailTaken, "could not update user")
	}
	if res.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgUserNotFound, "", "")
	}
	return nil
}

// Delete removes a user by id.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := ObjectID(id, MsgUserNotFound)
	if err != nil {
		return err
	}
	ctx, done := r.c.op(ctx, "delete")
	defer done()

	res, err := r.c.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapErr(err, MsgUserNotFound, "", "could not delete user")
	}
	if res.DeletedCount == 0 {
		return mapErr(mongo.ErrNoDocuments, MsgUserNotFound, "", "")
	}
	return nil
}
