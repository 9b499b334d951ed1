package seeders

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/pkg/database"
)

func init() {
	Register("plants", SeedPlants)
}

// SamplePlants is the starter catalogue.
var SamplePlants = []models.Plant{
	{PlantName: "Boston Fern", Description: "Lush arching fronds that like humidity and indirect light.", Type: "Fern", Category: models.CategoryIndoor, Status: models.PlantAvailable, Price: 18.5, Image: "plants/boston-fern.jpg"},
	{PlantName: "Snake Plant", Description: "Upright sword leaves, tolerant of low light and missed waterings.", Type: "Sansevieria", Category: models.CategoryIndoor, Status: models.PlantAvailable, Price: 24, Image: "plants/snake-plant.jpg"},
	{PlantName: "Lavender", Description: "Fragrant purple spikes for sunny borders.", Type: "Herb", Category: models.CategoryOutdoor, Status: models.PlantAvailable, Price: 9.99, Image: "plants/lavender.jpg"},
	{PlantName: "Japanese Maple", Description: "Small ornamental tree with deeply cut red leaves.", Type: "Tree", Category: models.CategoryOutdoor, Status: models.PlantNotAvailable, Price: 89, Image: "plants/japanese-maple.jpg"},
	{PlantName: "Echeveria", Description: "Rosette succulent in soft blue-green.", Type: "Succulent", Category: models.CategorySucculents, Status: models.PlantAvailable, Price: 6.5, Image: "plants/echeveria.jpg"},
	{PlantName: "Aloe Vera", Description: "Medicinal succulent with thick serrated leaves.", Type: "Succulent", Category: models.CategorySucculents, Status: models.PlantAvailable, Price: 12, Image: "plants/aloe-vera.jpg"},
}

// SeedPlants inserts SamplePlants into an empty catalogue. A catalogue that
// already has plants is left alone.
func SeedPlants(ctx context.Context, db *mongo.Database) error {
	n, err := db.Collection(database.Plants).CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("count plants: %w", err)
	}
	if n > 0 {
		return nil
	}

	repo := repositories.NewPlantRepository(db, config.DBTimeout())
	for i := range SamplePlants {
		p := SamplePlants[i]
		if err := repo.Create(ctx, &p); err != nil {
			return fmt.Errorf("insert %s: %w", p.PlantName, err)
		}
	}
	return nil
}
