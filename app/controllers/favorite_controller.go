package controllers

import (
	"context"

	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/pkg/ctx"
)

// FavoriteService is what FavoriteController needs from services.FavoriteService.
type FavoriteService interface {
	Add(ctx context.Context, userID string, in services.FavoriteInput) (resources.FavoriteView, error)
	List(ctx context.Context, userID string) ([]resources.FavoriteView, error)
	Remove(ctx context.Context, userID, plantID string) error
}

type FavoriteController struct {
	favorites FavoriteService
}

func NewFavoriteController(favorites FavoriteService) *FavoriteController {
	return &FavoriteController{favorites: favorites}
}

func (fc *FavoriteController) Index(c *ctx.Context) {
	favs, err := fc.favorites.List(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(favs)
}

func (fc *FavoriteController) Store(c *ctx.Context) {
	var in services.FavoriteInput
	if !c.BindJSON(&in) {
		return
	}
	fav, err := fc.favorites.Add(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.CreatedMessage("Plant added to favorites", fav)
}

func (fc *FavoriteController) Destroy(c *ctx.Context) {
	if err := fc.favorites.Remove(c.Context(), c.UserID(), c.Param("plantId")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Plant removed from favorites", nil)
}
