// Package controllers adapts HTTP requests to service calls. Each handler
// binds its payload, calls one service method and writes the envelope;
// error-to-status mapping lives in ctx.Fail.
package controllers

import "github.com/shashiranjanraj/planty/app/services"

var (
	_ UserService     = (*services.UserService)(nil)
	_ PlantService    = (*services.PlantService)(nil)
	_ CartService     = (*services.CartService)(nil)
	_ FavoriteService = (*services.FavoriteService)(nil)
	_ OrderService    = (*services.OrderService)(nil)
)
