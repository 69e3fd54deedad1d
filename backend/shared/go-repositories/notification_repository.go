// go-repositories/notification_repository.go

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

const DefaultNotificationListLimit = 50

// NotificationsUserFKey is the name PostgreSQL gives the user_id reference.
const NotificationsUserFKey = "notifications_user_id_fkey"

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkRead reports whether a notification owned by userID was found.
	MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func baseSelectNotification() string {
	return `
		SELECT id, user_id, title, description, type, link, metadata, read, created_at
		FROM notifications`
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n        models.Notification
		typ      string
		metadata []byte
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Description, &typ, &n.Link, &metadata, &n.Read, &n.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	n.Metadata, err = models.DecodeNotificationMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", n.ID, err)
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	metadata, err := models.EncodeNotificationMetadata(n.Metadata)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (
			id, user_id, title, description, type, link, metadata, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
		RETURNING created_at
	`,
		n.ID, n.UserID, n.Title, n.Description, string(n.Type), n.Link, metadata,
	).Scan(&n.CreatedAt)
}

func (r *notificationRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	return scanNotification(r.db.QueryRow(ctx,
		baseSelectNotification()+" WHERE id=$1 AND user_id=$2", id, userID))
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationListLimit
	}
	q := baseSelectNotification() + " WHERE user_id=$1"
	if unreadOnly {
		q += " AND read=FALSE"
	}
	q += " ORDER BY created_at DESC LIMIT $2"

	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read=FALSE`, userID,
	).Scan(&count)
	return count, err
}

// MarkRead is idempotent; marking an already read notification still
// reports it as found.
func (r *notificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE user_id=$1 AND read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *notificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE read=TRUE AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
