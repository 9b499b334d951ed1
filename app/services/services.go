// Package services holds the shop's business rules. Each service owns one
// area (users, catalogue, cart, favourites, orders) and talks only to
// repositories and infrastructure interfaces, never to another service.
package services

import (
	"github.com/shashiranjanraj/planty/pkg/apperr"
	"github.com/shashiranjanraj/planty/pkg/validate"
)

// check runs struct-tag validation on in.
func check(in interface{}) error {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return apperr.ValidationFields(errs)
	}
	return nil
}
