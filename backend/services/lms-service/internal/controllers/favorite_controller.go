package controllers

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

type FavoriteController struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteController(favoriteService *services.FavoriteService) *FavoriteController {
	return &FavoriteController{favoriteService: favoriteService}
}

func newFavoriteResponse(f *models.Favorite) dtos.FavoriteResponse {
	return dtos.FavoriteResponse{ID: f.ID, ResourceID: f.ResourceID, CreatedAt: f.CreatedAt}
}

// GET /api/v1/lms/favorites
func (c *FavoriteController) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.favoriteService.List(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp := dtos.ListFavoritesResponse{Favorites: make([]dtos.FavoriteResponse, 0, len(list))}
	for _, f := range list {
		resp.Favorites = append(resp.Favorites, newFavoriteResponse(f))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT /api/v1/lms/favorites/{resourceId}
func (c *FavoriteController) AddHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	resourceID, ok := pathUUID(w, r, "resourceId")
	if !ok {
		return
	}
	fav, err := c.favoriteService.Add(r.Context(), user.ID, resourceID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, newFavoriteResponse(fav))
}

// DELETE /api/v1/lms/favorites/{resourceId}
func (c *FavoriteController) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	resourceID, ok := pathUUID(w, r, "resourceId")
	if !ok {
		return
	}
	if err := c.favoriteService.Remove(r.Context(), user.ID, resourceID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// GET /api/v1/lms/favorites/{resourceId}
func (c *FavoriteController) StatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	resourceID, ok := pathUUID(w, r, "resourceId")
	if !ok {
		return
	}
	favorited, err := c.favoriteService.IsFavorited(r.Context(), user.ID, resourceID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.FavoriteStatusResponse{ResourceID: resourceID, IsFavorited: favorited})
}
