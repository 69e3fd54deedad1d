package dtos

import (
	"time"

	"github.com/google/uuid"
)

type FavoriteResponse struct {
	ID         uuid.UUID `json:"id"`
	ResourceID uuid.UUID `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FavoriteStatusResponse struct {
	ResourceID  uuid.UUID `json:"resource_id"`
	IsFavorited bool      `json:"is_favorited"`
}

type ListFavoritesResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
}
