package services

import (
	"context"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationService struct {
	repo    repositories.NotificationRepository
	metrics *metrics.Metrics
}

func NewNotificationService(repo repositories.NotificationRepository, m *metrics.Metrics) *NotificationService {
	return &NotificationService{repo: repo, metrics: m}
}

// NewNotification is the input of Create.
type NewNotification struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Type        models.NotificationType
	Link        *string
	Metadata    models.NotificationMetadata
}

func (s *NotificationService) Create(ctx context.Context, in NewNotification) (*models.Notification, error) {
	if !in.Type.Valid() {
		return nil, validationError("Unknown notification type", nil)
	}
	n := &models.Notification{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Link:        in.Link,
		Metadata:    in.Metadata,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		if repositories.IsForeignKeyViolation(err, repositories.NotificationsUserFKey) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, utils.NewInternalError("Could not create notification", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	return n, nil
}

// CreateFromRequest handles the admin endpoint, where type and metadata
// arrive as untrusted JSON.
func (s *NotificationService) CreateFromRequest(ctx context.Context, req dtos.CreateNotificationRequest) (*models.Notification, error) {
	typ, err := models.ParseNotificationType(req.Type)
	if err != nil {
		return nil, validationError("Unknown notification type", err)
	}
	metadata, err := models.DecodeNotificationMetadata(req.Metadata)
	if err != nil {
		return nil, validationError("Invalid notification metadata", err)
	}
	return s.Create(ctx, NewNotification{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Type:        typ,
		Link:        req.Link,
		Metadata:    metadata,
	})
}

// notifyBestEffort is used by server-side triggers whose primary write has
// already committed; a failure is logged, never surfaced.
func (s *NotificationService) notifyBestEffort(ctx context.Context, in NewNotification) {
	if _, err := s.Create(ctx, in); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id": in.UserID,
			"type":    in.Type,
		}).Error("Failed to create notification")
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, q dtos.ListNotificationsQuery) ([]*models.Notification, error) {
	limit := clampLimit(q.Limit, constants.DefaultListLimit, constants.MaxListLimit)
	list, err := s.repo.ListByUser(ctx, userID, q.UnreadOnly, limit)
	if err != nil {
		return nil, utils.NewInternalError("Could not list notifications", err)
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("Could not count notifications", err)
	}
	return count, nil
}

// MarkRead only touches notifications owned by userID; anything else is
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return utils.NewInternalError("Could not update notification", err)
	}
	if !found {
		return utils.NewNotFoundError("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("Could not update notifications", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return utils.NewInternalError("Could not delete notification", err)
	}
	if !found {
		return utils.NewNotFoundError("Notification not found")
	}
	return nil
}

// PurgeRead deletes read notifications older than retention.
func (s *NotificationService) PurgeRead(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, now.Add(-retention))
}
