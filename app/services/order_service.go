package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/collection"
	"github.com/shashiranjanraj/planty/pkg/event"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/money"
)

// OrderInput places an order for one plant. The customer is the caller.
type OrderInput struct {
	PlantID  string `json:"products" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Status   string `json:"status"   validate:"nullable,in=pending,completed,cancelled"`
}

// OrderPatch changes quantity and/or status.
type OrderPatch struct {
	Quantity *int    `json:"quantity" validate:"nullable,gt=0"`
	Status   *string `json:"status"   validate:"nullable,in=pending,completed,cancelled"`
}

// OrderDeleted is the payload of order.deleted.
type OrderDeleted struct {
	ID string `json:"id"`
}

// OrderService manages orders and announces every change on the event bus.
type OrderService struct {
	orders repositories.Orders
	users  repositories.Users
	plants repositories.Plants
	events event.Dispatcher
}

func NewOrderService(orders repositories.Orders, users repositories.Users, plants repositories.Plants, events event.Dispatcher) *OrderService {
	return &OrderService{orders: orders, users: users, plants: plants, events: events}
}

// Create prices the order at the plant's current price and fires
// order.created.
func (s *OrderService) Create(ctx context.Context, userID string, in OrderInput) (resources.OrderView, error) {
	if err := check(in); err != nil {
		return resources.OrderView{}, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return resources.OrderView{}, err
	}
	p, err := s.plants.FindByID(ctx, in.PlantID)
	if err != nil {
		return resources.OrderView{}, err
	}

	status := in.Status
	if status == "" {
		status = models.OrderPending
	}
	o := &models.Order{
		Customer: u.ID,
		Products: p.ID,
		Quantity: in.Quantity,
		Total:    money.Times(p.Price, in.Quantity),
		Status:   status,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return resources.OrderView{}, err
	}

	metrics.OrdersCreated.WithLabelValues(o.Status).Inc()
	s.events.Fire(event.OrderCreated, resources.OrderEvent(*o))
	return resources.Order(*o, u, p), nil
}

// List returns every order with customers and plants expanded.
func (s *OrderService) List(ctx context.Context) ([]resources.OrderView, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.users.FindMany(ctx, collection.Pluck(orders, func(o models.Order) primitive.ObjectID { return o.Customer }))
	if err != nil {
		return nil, err
	}
	plants, err := s.plants.FindMany(ctx, collection.Pluck(orders, func(o models.Order) primitive.ObjectID { return o.Products }))
	if err != nil {
		return nil, err
	}

	out := make([]resources.OrderView, 0, len(orders))
	for _, o := range orders {
		var customer *models.User
		if u, ok := users[o.Customer]; ok {
			customer = &u
		}
		out = append(out, resources.Order(o, customer, plantRef(plants, o.Products)))
	}
	return out, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (resources.OrderView, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return resources.OrderView{}, err
	}
	return s.expand(ctx, o)
}

// Update applies patch. A new quantity is re-priced at the plant's current
// price. Fires order.updated.
func (s *OrderService) Update(ctx context.Context, id string, patch OrderPatch) (resources.OrderView, error) {
	if err := check(patch); err != nil {
		return resources.OrderView{}, err
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return resources.OrderView{}, err
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.Quantity != nil {
		p, err := s.plants.FindByID(ctx, o.Products.Hex())
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return resources.OrderView{}, apperr.Validation("The ordered plant no longer exists; quantity cannot be changed.")
			}
			return resources.OrderView{}, err
		}
		o.Quantity = *patch.Quantity
		o.Total = money.Times(p.Price, o.Quantity)
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return resources.OrderView{}, err
	}
	view, err := s.expand(ctx, o)
	if err != nil {
		return resources.OrderView{}, err
	}
	s.events.Fire(event.OrderUpdated, resources.OrderEvent(*o))
	return view, nil
}

// Delete removes an order and fires order.deleted.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Fire(event.OrderDeleted, OrderDeleted{ID: id})
	return nil
}

// expand loads the customer and plant of o. Either may have been deleted
// since the order was placed.
func (s *OrderService) expand(ctx context.Context, o *models.Order) (resources.OrderView, error) {
	var (
		customer *models.User
		plant    *models.Plant
	)
	u, err := s.users.FindByID(ctx, o.Customer.Hex())
	switch {
	case err == nil:
		customer = u
	case apperr.KindOf(err) != apperr.KindNotFound:
		return resources.OrderView{}, err
	}
	p, err := s.plants.FindByID(ctx, o.Products.Hex())
	switch {
	case err == nil:
		plant = p
	case apperr.KindOf(err) != apperr.KindNotFound:
		return resources.OrderView{}, err
	}
	return resources.Order(*o, customer, plant), nil
}
