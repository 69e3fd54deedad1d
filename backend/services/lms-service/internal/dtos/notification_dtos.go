package dtos

import (
	"encoding/json"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
)

/*
ListNotificationsQuery is the "request DTO" for GET /api/v1/lms/notifications.
*/
type ListNotificationsQuery struct {
	UnreadOnly bool
	Limit      int
}

// CreateNotificationRequest is the admin broadcast payload. Metadata, when
// present, is a {"kind": ..., "data": ...} envelope.
type CreateNotificationRequest struct {
	UserID      uuid.UUID       `json:"user_id" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=2000"`
	Type        string          `json:"type" validate:"required"`
	Link        *string         `json:"link,omitempty" validate:"omitempty,max=2048"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

type NotificationResponse struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Type        models.NotificationType `json:"type"`
	Link        *string                 `json:"link,omitempty"`
	Metadata    json.RawMessage         `json:"metadata,omitempty"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"created_at"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Type:        n.Type,
		Link:        n.Link,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	// Metadata was validated on the way in; a failure here leaves it out.
	if b, err := models.EncodeNotificationMetadata(n.Metadata); err == nil && b != nil {
		resp.Metadata = b
	}
	return resp
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}
