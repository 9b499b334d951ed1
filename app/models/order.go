package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is a purchase of a single plant. Total is plant price × quantity,
// fixed when the order is created and recomputed only when the quantity
// changes.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Customer  primitive.ObjectID `bson:"customer"`
	Products  primitive.ObjectID `bson:"products"`
	Quantity  int                `bson:"quantity"`
	Total     float64            `bson:"total"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}
