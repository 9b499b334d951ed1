package controllers

import (
	"context"

	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/ctx"
)

// CartService is what CartController needs from services.CartService.
type CartService interface {
	Add(ctx context.Context, userID string, in services.CartInput) (resources.CartEntryView, error)
	List(ctx context.Context, userID string) ([]resources.CartEntryView, error)
	Remove(ctx context.Context, userID, plantID string) error
	Update(ctx context.Context, userID, plantID string, patch services.CartPatch) (resources.CartEntryView, error)
}

// CartController serves the caller's own cart; the user comes from the token.
type CartController struct {
	carts CartService
}

func NewCartController(carts CartService) *CartController {
	return &CartController{carts: carts}
}

func (cc *CartController) Index(c *ctx.Context) {
	lines, err := cc.carts.List(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(lines)
}

func (cc *CartController) Store(c *ctx.Context) {
	var in services.CartInput
	if !c.BindJSON(&in) {
		return
	}
	line, err := cc.carts.Add(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Plant added to cart", line)
}

func (cc *CartController) Update(c *ctx.Context) {
	var patch services.CartPatch
	if !c.BindJSON(&patch) {
		return
	}
	line, err := cc.carts.Update(c.Context(), c.UserID(), c.Param("plantId"), patch)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Cart updated", line)
}

func (cc *CartController) Destroy(c *ctx.Context) {
	if err := cc.carts.Remove(c.Context(), c.UserID(), c.Param("plantId")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plant removed from cart", nil)
}
