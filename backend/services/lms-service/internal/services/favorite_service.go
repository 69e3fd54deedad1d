package services

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
)

type FavoriteService struct {
	repo repositories.FavoriteRepository
}

func NewFavoriteService(repo repositories.FavoriteRepository) *FavoriteService {
	return &FavoriteService{repo: repo}
}

// Add is idempotent and returns the existing favorite when present.
func (s *FavoriteService) Add(ctx context.Context, userID, resourceID uuid.UUID) (*models.Favorite, error) {
	fav, err := s.repo.AddIfAbsent(ctx, &models.Favorite{
		ID:         uuid.New(),
		UserID:     userID,
		ResourceID: resourceID,
	})
	if err != nil {
		return nil, utils.NewInternalError("Could not add favorite", err)
	}
	return fav, nil
}

// Remove is a no-op when the resource is not a favorite.
func (s *FavoriteService) Remove(ctx context.Context, userID, resourceID uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, userID, resourceID); err != nil {
		return utils.NewInternalError("Could not remove favorite", err)
	}
	return nil
}

func (s *FavoriteService) IsFavorited(ctx context.Context, userID, resourceID uuid.UUID) (bool, error) {
	fav, err := s.repo.Get(ctx, userID, resourceID)
	if err != nil {
		return false, utils.NewInternalError("Could not load favorite", err)
	}
	return fav != nil, nil
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not list favorites", err)
	}
	return list, nil
}
