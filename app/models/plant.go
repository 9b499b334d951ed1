package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plant categories.
const (
	CategoryIndoor     = "indoor"
	CategoryOutdoor    = "outdoor"
	CategorySucculents = "succulents"
)

// Plant availability.
const (
	PlantAvailable    = "Available"
	PlantNotAvailable = "Not Available"
)

// Plant is a catalogue item.
type Plant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlantName   string             `bson:"plantname"     json:"plantname"`
	Description string             `bson:"description"   json:"description"`
	Type        string             `bson:"type"          json:"type"`
	Category    string             `bson:"category"      json:"category"`
	Status      string             `bson:"status"        json:"status"`
	Price       float64            `bson:"price"         json:"price"`
	Image       string             `bson:"image"         json:"image"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

// PlantFilter narrows a catalogue listing. Empty fields match everything.
type PlantFilter struct {
	Category string
	Status   string
}

// PlantPatch is a partial update; nil fields are left alone.
type PlantPatch struct {
	PlantName   *string
	Description *string
	Type        *string
	Category    *string
	Status      *string
	Price       *float64
	Image       *string
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryIndoor, CategoryOutdoor, CategorySucculents:
		return true
	}
	return false
}

// ValidPlantStatus reports whether s is a known availability.
func ValidPlantStatus(s string) bool {
	return s == PlantAvailable || s == PlantNotAvailable
}
