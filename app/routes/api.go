// Package routes declares the /api/v0 surface. Read-only catalog and
// account recovery routes are public; everything else sits behind the
// bearer-token group.
package routes

import (
	"github.com/shashiranjanraj/planty/app/controllers"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/ctx"
	"github.com/shashiranjanraj/planty/pkg/middleware"
	"github.com/shashiranjanraj/planty/pkg/router"
)

// Prefix is where every API route is mounted.
const Prefix = "/api/v0"

// Controllers bundles the handlers RegisterAPI mounts.
type Controllers struct {
	Users     *controllers.UserController
	Plants    *controllers.PlantController
	Carts     *controllers.CartController
	Favorites *controllers.FavoriteController
	Orders    *controllers.OrderController
}

func RegisterAPI(r *router.Router, issuer *auth.Issuer, c Controllers) {
	api := r.Group(Prefix)

	api.Post("/user/register", "user.register", ctx.Wrap(c.Users.Register))
	api.Post("/user/login", "user.login", ctx.Wrap(c.Users.Login))
	api.Post("/user/otp", "user.otp", ctx.Wrap(c.Users.SendOTP))
	api.Post("/user/reset-password", "user.reset-password", ctx.Wrap(c.Users.ResetPassword))

	api.Get("/plants", "plants.index", ctx.Wrap(c.Plants.Index))
	api.Get("/plants/export", "plants.export", ctx.Wrap(c.Plants.Export))
	api.Get("/plants/{id}", "plants.show", ctx.Wrap(c.Plants.Show))

	secured := api.Group("", middleware.Auth(issuer))

	// Lookup by email has its own segment so /user/{id} keeps a single
	// wildcard name.
	secured.Get("/user", "user.index", ctx.Wrap(c.Users.Index))
	secured.Get("/user/email/{email}", "user.show", ctx.Wrap(c.Users.Show))
	secured.Put("/user/{id}", "user.update", ctx.Wrap(c.Users.Update))
	secured.Delete("/user/{id}", "user.destroy", ctx.Wrap(c.Users.Destroy))

	secured.Post("/plants", "plants.store", ctx.Wrap(c.Plants.Store))
	secured.Post("/plants/image", "plants.image", ctx.Wrap(c.Plants.UploadImage))
	secured.Put("/plants/{id}", "plants.update", ctx.Wrap(c.Plants.Update))
	secured.Delete("/plants/{id}", "plants.destroy", ctx.Wrap(c.Plants.Destroy))

	secured.Get("/cart", "cart.index", ctx.Wrap(c.Carts.Index))
	secured.Post("/cart", "cart.store", ctx.Wrap(c.Carts.Store))
	secured.Patch("/cart/{plantId}", "cart.update", ctx.Wrap(c.Carts.Update))
	secured.Delete("/cart/{plantId}", "cart.destroy", ctx.Wrap(c.Carts.Destroy))

	secured.Get("/favorites", "favorites.index", ctx.Wrap(c.Favorites.Index))
	secured.Post("/favorites", "favorites.store", ctx.Wrap(c.Favorites.Store))
	secured.Delete("/favorites/{plantId}", "favorites.destroy", ctx.Wrap(c.Favorites.Destroy))

	secured.Post("/orders", "orders.store", ctx.Wrap(c.Orders.Store))
	secured.Get("/orders", "orders.index", ctx.Wrap(c.Orders.Index))
	secured.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	secured.Put("/orders/{id}", "orders.update", ctx.Wrap(c.Orders.Update))
	secured.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(c.Orders.Destroy))
}
