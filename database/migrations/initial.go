package migrations

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/planty/pkg/database"
	"github.com/shashiranjanraj/planty/pkg/migration"
)

func init() {
	migration.Register("20260101000000_users_email_unique", UsersEmailUnique)
	migration.Register("20260101000001_plants_category_status", PlantsCategoryStatus)
	migration.Register("20260101000002_carts_user_plant", CartsUserPlant)
	migration.Register("20260101000003_favorites_user_plant", FavoritesUserPlant)
	migration.Register("20260101000004_orders_customer", OrdersCustomer)
}

// -------- 0000: users --------

// UsersEmailUnique backs the duplicate-email conflict on register.
var UsersEmailUnique = &index{
	collection: database.Users,
	name:       "users_email_unique",
	keys:       bson.D{{Key: "email", Value: 1}},
	unique:     true,
}

// -------- 0001: plants --------

var PlantsCategoryStatus = &index{
	collection: database.Plants,
	name:       "plants_category_status",
	keys:       bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
}

// -------- 0002: carts --------

// Not unique: a user may hold several lines for the same plant.
var CartsUserPlant = &index{
	collection: database.Carts,
	name:       "carts_user_plant",
	keys:       bson.D{{Key: "userId", Value: 1}, {Key: "plantId", Value: 1}},
}

// -------- 0003: favorites --------

var FavoritesUserPlant = &index{
	collection: database.Favorites,
	name:       "favorites_user_plant",
	keys:       bson.D{{Key: "userId", Value: 1}, {Key: "plantId", Value: 1}},
}

// -------- 0004: orders --------

var OrdersCustomer = &index{
	collection: database.Orders,
	name:       "orders_customer",
	keys:       bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}},
}
