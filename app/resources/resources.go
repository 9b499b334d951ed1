// Package resources shapes models into the JSON returned by the API.
//
// Controllers never serialise a model directly: a User carries its password
// hash and reset code, and carts, favourites and orders reference other
// documents that are expanded here.
package resources

import (
	"time"

	"github.com/shashiranjanraj/planty/app/models"
)

// UserView is the public face of a user.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthView is returned by register and login.
type AuthView struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

// CartEntryView is a cart line with its plant expanded under plantId.
type CartEntryView struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Plant     *models.Plant `json:"plantId"`
	Quantity  int           `json:"quantity"`
	UnitPrice float64       `json:"unitPrice"`
	Price     float64       `json:"price"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// FavoriteView is a favourite with its plant expanded under plantId.
type FavoriteView struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Plant     *models.Plant `json:"plantId"`
	CreatedAt time.Time     `json:"createdAt"`
}

// OrderView expands the customer and the ordered plant.
type OrderView struct {
	ID        string        `json:"id"`
	Customer  *UserView     `json:"customer"`
	Products  *models.Plant `json:"products"`
	Quantity  int           `json:"quantity"`
	Total     float64       `json:"total"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// OrderEventView is the payload of order.created and order.updated. It goes
// to unauthenticated websocket clients and the broker log, so the customer
// appears by id only.
type OrderEventView struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	Products  string    `json:"products"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User converts a user into its view.
func User(u models.User) UserView {
	return UserView{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Users converts a slice, never returning nil so the JSON is [] rather than null.
func Users(us []models.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, User(u))
	}
	return out
}

// CartEntry expands e with p, which may be nil when the plant was deleted.
func CartEntry(e models.CartEntry, p *models.Plant) CartEntryView {
	return CartEntryView{
		ID:        e.ID.Hex(),
		UserID:    e.UserID.Hex(),
		Plant:     p,
		Quantity:  e.Quantity,
		UnitPrice: e.UnitPrice,
		Price:     e.Price,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Favorite expands f with p.
func Favorite(f models.Favorite, p *models.Plant) FavoriteView {
	return FavoriteView{
		ID:        f.ID.Hex(),
		UserID:    f.UserID.Hex(),
		Plant:     p,
		CreatedAt: f.CreatedAt,
	}
}

// Order expands o with its customer and plant. Either may be nil when the
// referenced document no longer exists.
func Order(o models.Order, u *models.User, p *models.Plant) OrderView {
	v := OrderView{
		ID:        o.ID.Hex(),
		Products:  p,
		Quantity:  o.Quantity,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if u != nil {
		cv := User(*u)
		v.Customer = &cv
	}
	return v
}

// OrderEvent converts o into its event payload.
func OrderEvent(o models.Order) OrderEventView {
	return OrderEventView{
		ID:        o.ID.Hex(),
		Customer:  o.Customer.Hex(),
		Products:  o.Products.Hex(),
		Quantity:  o.Quantity,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
