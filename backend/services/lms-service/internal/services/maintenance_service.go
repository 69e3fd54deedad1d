package services

import (
	"context"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/robfig/cron/v3"
)

// MaintenanceService owns the periodic cleanup jobs.
type MaintenanceService struct {
	purchases     *PurchaseService
	notifications *NotificationService
	retention     time.Duration
	now           func() time.Time
}

func NewMaintenanceService(purchases *PurchaseService, notifications *NotificationService, retention time.Duration) *MaintenanceService {
	return &MaintenanceService{
		purchases:     purchases,
		notifications: notifications,
		retention:     retention,
		now:           time.Now,
	}
}

// Register adds the maintenance jobs to c. The caller starts and stops c.
func (s *MaintenanceService) Register(c *cron.Cron) error {
	if _, err := c.AddFunc(constants.PurchaseExpiryCronSpec, s.runExpirePurchases); err != nil {
		return err
	}
	if _, err := c.AddFunc(constants.NotificationPurgeCronSpec, s.runPurgeNotifications); err != nil {
		return err
	}
	return nil
}

func (s *MaintenanceService) runExpirePurchases() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.PurchaseExpiryJobTimeout)
	defer cancel()
	if _, err := s.ExpireStalePurchases(ctx); err != nil {
		utils.Logger.WithError(err).Error("Scheduled purchase expiry failed")
	}
}

func (s *MaintenanceService) runPurgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.NotificationPurgeJobTimeout)
	defer cancel()
	if _, err := s.PurgeReadNotifications(ctx); err != nil {
		utils.Logger.WithError(err).Error("Scheduled notification purge failed")
	}
}

func (s *MaintenanceService) ExpireStalePurchases(ctx context.Context) (int64, error) {
	n, err := s.purchases.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.Logger.Infof("Expired %d stale open purchase(s)", n)
	}
	return n, nil
}

func (s *MaintenanceService) PurgeReadNotifications(ctx context.Context) (int64, error) {
	n, err := s.notifications.PurgeRead(ctx, s.now(), s.retention)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.Logger.Infof("Purged %d read notification(s) older than %s", n, s.retention)
	}
	return n, nil
}
