// Package graphql exposes the plant catalogue as a read-only GraphQL
// query:
//
//	{ plants(category: "indoor", status: "Available") { id plantname price } }
//	{ plant(id: "65f1c0a2b3d4e5f601234567") { plantname image } }
package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	gql "github.com/shashiranjanraj/planty/pkg/graphql"
)

// Catalog is the part of services.PlantService the schema reads from.
type Catalog interface {
	List(ctx context.Context, f models.PlantFilter) ([]models.Plant, error)
	Get(ctx context.Context, id string) (*models.Plant, error)
}

var plantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Plant",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"plantname":   &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"type":        &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"status":      &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"image":       &graphql.Field{Type: graphql.String},
		"createdAt":   &graphql.Field{Type: graphql.String},
		"updatedAt":   &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the catalogue schema over c.
func NewSchema(c Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plants": &graphql.Field{
				Type: graphql.NewList(plantType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"status":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, _ := p.Args["category"].(string)
					status, _ := p.Args["status"].(string)
					plants, err := c.List(p.Context, models.PlantFilter{Category: category, Status: status})
					if err != nil {
						return nil, public(err)
					}
					out := make([]map[string]interface{}, 0, len(plants))
					for i := range plants {
						out = append(out, plantFields(&plants[i]))
					}
					return out, nil
				},
			},
			"plant": &graphql.Field{
				Type: plantType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					plant, err := c.Get(p.Context, id)
					if err != nil {
						return nil, public(err)
					}
					return plantFields(plant), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func plantFields(p *models.Plant) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID.Hex(),
		"plantname":   p.PlantName,
		"description": p.Description,
		"type":        p.Type,
		"category":    p.Category,
		"status":      p.Status,
		"price":       p.Price,
		"image":       p.Image,
		"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// public strips causes from service errors before they reach the client.
func public(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return errors.New(ae.Message)
	}
	return errors.New("Internal Server Error")
}
