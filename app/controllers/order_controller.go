package controllers

import (
	"context"

	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/ctx"
)

// OrderService is what OrderController needs from services.OrderService.
type OrderService interface {
	Create(ctx context.Context, userID string, in services.OrderInput) (resources.OrderView, error)
	List(ctx context.Context) ([]resources.OrderView, error)
	Get(ctx context.Context, id string) (resources.OrderView, error)
	Update(ctx context.Context, id string, patch services.OrderPatch) (resources.OrderView, error)
	Delete(ctx context.Context, id string) error
}

type OrderController struct {
	orders OrderService
}

func NewOrderController(orders OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Store places an order for the token's user.
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.Create(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Order created successfully", order)
}

func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	order, err := oc.orders.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

func (oc *OrderController) Update(c *ctx.Context) {
	var patch services.OrderPatch
	if !c.BindJSON(&patch) {
		return
	}
	order, err := oc.orders.Update(c.Context(), c.Param("id"), patch)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Order updated successfully", order)
}

// Destroy answers 204 with no body.
func (oc *OrderController) Destroy(c *ctx.Context) {
	if err := oc.orders.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}
