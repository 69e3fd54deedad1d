package dtos

import (
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Image     *string         `json:"image,omitempty"`
	Role      models.RoleType `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin instructor student"`
}
