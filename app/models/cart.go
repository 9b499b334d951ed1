package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartEntry is one line in a user's cart. UnitPrice is what the client
// quoted and Price is UnitPrice × Quantity. Neither follows later catalogue
// changes. Rows written before unitPrice existed carry zero there.
type CartEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	PlantID   primitive.ObjectID `bson:"plantId"`
	Quantity  int                `bson:"quantity"`
	UnitPrice float64            `bson:"unitPrice"`
	Price     float64            `bson:"price"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// Favorite marks a plant on a user's wish list.
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	PlantID   primitive.ObjectID `bson:"plantId"`
	CreatedAt time.Time          `bson:"createdAt"`
}
