package controllers

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-middleware"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

type UserController struct {
	identityService *services.IdentityService
}

func NewUserController(identityService *services.IdentityService) *UserController {
	return &UserController{identityService: identityService}
}

// EnsureMeHandler -> POST /api/v1/lms/users/me
func (c *UserController) EnsureMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	user, err := c.identityService.EnsureUser(r.Context(), identity)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserResponse(user))
}

// GetMeHandler -> GET /api/v1/lms/users/me
func (c *UserController) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	user, err := c.identityService.GetCurrentUser(r.Context(), identity)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserResponse(user))
}

// SetRoleHandler -> PUT /api/v1/lms/users/{id}/role (admin)
func (c *UserController) SetRoleHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.SetRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid role", nil, err)
		return
	}

	user, err := c.identityService.SetRole(r.Context(), actor, userID, role)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewUserResponse(user))
}
