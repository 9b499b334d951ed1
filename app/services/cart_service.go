package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/pkg/collection"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/money"
)

// CartInput adds a plant to the caller's cart. Price is the unit price.
type CartInput struct {
	PlantID  string  `json:"plantId"  validate:"required,objectid"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price"    validate:"required,gt=0,decimals=2"`
}

// CartPatch changes the first line for a plant. The line price is
// recomputed from the unit price and quantity in effect after the patch.
type CartPatch struct {
	Quantity *int     `json:"quantity" validate:"nullable,gt=0"`
	Price    *float64 `json:"price"    validate:"nullable,gt=0,decimals=2"`
}

// CartService manages cart lines.
type CartService struct {
	carts  repositories.Carts
	users  repositories.Users
	plants repositories.Plants
}

func NewCartService(carts repositories.Carts, users repositories.Users, plants repositories.Plants) *CartService {
	return &CartService{carts: carts, users: users, plants: plants}
}

// Add inserts a new line priced at unit × quantity. Repeated adds of the
// same plant produce separate lines.
func (s *CartService) Add(ctx context.Context, userID string, in CartInput) (resources.CartEntryView, error) {
	if err := check(in); err != nil {
		return resources.CartEntryView{}, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return resources.CartEntryView{}, err
	}
	p, err := s.plants.FindByID(ctx, in.PlantID)
	if err != nil {
		return resources.CartEntryView{}, err
	}

	e := &models.CartEntry{
		UserID:   u.ID,
		PlantID:  p.ID,
		Quantity:  in.Quantity,
		UnitPrice: in.Price,
		Price:     money.Times(in.Price, in.Quantity),
	}
	if err := s.carts.Insert(ctx, e); err != nil {
		return resources.CartEntryView{}, err
	}
	metrics.CartAdds.Inc()
	return resources.CartEntry(*e, p), nil
}

// List returns the user's lines with plants expanded.
func (s *CartService) List(ctx context.Context, userID string) ([]resources.CartEntryView, error) {
	uid, err := repositories.ObjectID(userID, repositories.MsgUserNotFound)
	if err != nil {
		return nil, err
	}
	entries, err := s.carts.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	plants, err := s.plants.FindMany(ctx, collection.Pluck(entries, func(e models.CartEntry) primitive.ObjectID { return e.PlantID }))
	if err != nil {
		return nil, err
	}

	out := make([]resources.CartEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, resources.CartEntry(e, plantRef(plants, e.PlantID)))
	}
	return out, nil
}

// Remove deletes the first line for the plant.
func (s *CartService) Remove(ctx context.Context, userID, plantID string) error {
	uid, pid, err := pairKeys(userID, plantID, repositories.MsgCartNotFound)
	if err != nil {
		return err
	}
	_, err = s.carts.DeleteFirst(ctx, uid, pid)
	return err
}

// Update patches the first line for the plant.
func (s *CartService) Update(ctx context.Context, userID, plantID string, patch CartPatch) (resources.CartEntryView, error) {
	if err := check(patch); err != nil {
		return resources.CartEntryView{}, err
	}
	uid, pid, err := pairKeys(userID, plantID, repositories.MsgCartNotFound)
	if err != nil {
		return resources.CartEntryView{}, err
	}

	e, err := s.carts.FindFirst(ctx, uid, pid)
	if err != nil {
		return resources.CartEntryView{}, err
	}

	if e.UnitPrice == 0 {
		e.UnitPrice = money.Unit(e.Price, e.Quantity)
	}
	if patch.Price != nil {
		e.UnitPrice = *patch.Price
	}
	if patch.Quantity != nil {
		e.Quantity = *patch.Quantity
	}
	e.Price = money.Times(e.UnitPrice, e.Quantity)

	if err := s.carts.Update(ctx, e); err != nil {
		return resources.CartEntryView{}, err
	}

	var plant *models.Plant
	if p, err := s.plants.FindByID(ctx, plantID); err == nil {
		plant = p
	}
	return resources.CartEntry(*e, plant), nil
}

// pairKeys parses the (user, plant) pair. A malformed id cannot match any
// line, so it reports notFound.
func pairKeys(userID, plantID, notFound string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := repositories.ObjectID(userID, notFound)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	pid, err := repositories.ObjectID(plantID, notFound)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return uid, pid, nil
}

func plantRef(plants map[primitive.ObjectID]models.Plant, id primitive.ObjectID) *models.Plant {
	p, ok := plants[id]
	if !ok {
		return nil
	}
	return &p
}
