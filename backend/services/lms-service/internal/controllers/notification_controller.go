package controllers

import (
	"net/http"
	"strconv"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

type NotificationController struct {
	notificationService *services.NotificationService
}

func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// ----------------------------------------------------------------
// GET /api/v1/lms/notifications?unread_only=true&limit=20
// ----------------------------------------------------------------
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var q dtos.ListNotificationsQuery
	if raw := r.URL.Query().Get("unread_only"); raw != "" {
		unreadOnly, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "unread_only must be a boolean", nil, err)
			return
		}
		q.UnreadOnly = unreadOnly
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "limit must be an integer", nil, err)
		return
	}
	q.Limit = limit

	list, err := c.notificationService.List(r.Context(), user.ID, q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp := dtos.ListNotificationsResponse{Notifications: make([]dtos.NotificationResponse, 0, len(list))}
	for _, n := range list {
		resp.Notifications = append(resp.Notifications, dtos.NewNotificationResponse(n))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/lms/notifications/unread-count
// ----------------------------------------------------------------
func (c *NotificationController) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	count, err := c.notificationService.UnreadCount(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnreadCountResponse{Count: count})
}

// ----------------------------------------------------------------
// POST /api/v1/lms/notifications (admin)
// ----------------------------------------------------------------
func (c *NotificationController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	n, err := c.notificationService.CreateFromRequest(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewNotificationResponse(n))
}

// ----------------------------------------------------------------
// POST /api/v1/lms/notifications/{id}/read
// ----------------------------------------------------------------
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.notificationService.MarkRead(r.Context(), user.ID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// ----------------------------------------------------------------
// POST /api/v1/lms/notifications/read-all
// ----------------------------------------------------------------
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	updated, err := c.notificationService.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MarkAllReadResponse{Success: true, Updated: updated})
}

// ----------------------------------------------------------------
// DELETE /api/v1/lms/notifications/{id}
// ----------------------------------------------------------------
func (c *NotificationController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.notificationService.Delete(r.Context(), user.ID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}
