package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/pkg/collection"
)

// FavoriteInput marks a plant as a favourite.
type FavoriteInput struct {
	PlantID string `json:"plantId" validate:"required,objectid"`
}

// FavoriteService manages wish lists.
type FavoriteService struct {
	favorites repositories.Favorites
	users     repositories.Users
	plants    repositories.Plants
}

func NewFavoriteService(favorites repositories.Favorites, users repositories.Users, plants repositories.Plants) *FavoriteService {
	return &FavoriteService{favorites: favorites, users: users, plants: plants}
}

func (s *FavoriteService) Add(ctx context.Context, userID string, in FavoriteInput) (resources.FavoriteView, error) {
	if err := check(in); err != nil {
		return resources.FavoriteView{}, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return resources.FavoriteView{}, err
	}
	p, err := s.plants.FindByID(ctx, in.PlantID)
	if err != nil {
		return resources.FavoriteView{}, err
	}

	f := &models.Favorite{UserID: u.ID, PlantID: p.ID}
	if err := s.favorites.Insert(ctx, f); err != nil {
		return resources.FavoriteView{}, err
	}
	return resources.Favorite(*f, p), nil
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]resources.FavoriteView, error) {
	uid, err := repositories.ObjectID(userID, repositories.MsgUserNotFound)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	plants, err := s.plants.FindMany(ctx, collection.Pluck(favs, func(f models.Favorite) primitive.ObjectID { return f.PlantID }))
	if err != nil {
		return nil, err
	}

	out := make([]resources.FavoriteView, 0, len(favs))
	for _, f := range favs {
		out = append(out, resources.Favorite(f, plantRef(plants, f.PlantID)))
	}
	return out, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, plantID string) error {
	uid, pid, err := pairKeys(userID, plantID, repositories.MsgFavoriteNotFound)
	if err != nil {
		return err
	}
	_, err = s.favorites.DeleteFirst(ctx, uid, pid)
	return err
}
