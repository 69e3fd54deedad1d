package app

import (
	"context"
	"fmt"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	seeding "github.com/doctrina/mono-repo/backend/shared/go-seeding"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
)

const (
	// SentinelNotificationID is used to check if seeding has already occurred.
	SentinelNotificationID = "dddddddd-dddd-4ddd-8ddd-ddddddddddd1"

	SeedCourseID        = "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeee1"
	SeedCourseName      = "Getting Started with Doctrina"
	SeedCheckoutSession = "cs_seed_getting_started"
	SeedCoursePrice     = int64(4999)
)

// SeedAllTestData seeds the default users, the price of the seed course
// owned by the seed instructor, and a completed purchase, an enrollment and
// a welcome notification for the seed student. It is
// idempotent and skips everything after the users once the sentinel
// notification exists.
func SeedAllTestData(ctx context.Context, repos Repositories) error {
	if err := seeding.SeedDefaultUsers(ctx, repos.Users); err != nil {
		return fmt.Errorf("seed default users: %w", err)
	}

	studentID := uuid.MustParse(seeding.DefaultStudentUserID)
	sentinelID := uuid.MustParse(SentinelNotificationID)
	courseID := uuid.MustParse(SeedCourseID)

	existing, err := repos.Notifications.GetByID(ctx, studentID, sentinelID)
	if err != nil {
		return fmt.Errorf("failed to check for sentinel notification: %w", err)
	}
	if existing != nil {
		utils.Logger.Info("lms-service: Seed data already present; skipping seeding.")
		return nil
	}

	if _, err := repos.CoursePrices.Upsert(ctx, &models.CoursePrice{
		CourseID:     courseID,
		CourseName:   SeedCourseName,
		AmountCents:  SeedCoursePrice,
		InstructorID: uuid.MustParse(seeding.DefaultInstructorUserID),
		UpdatedBy:    uuid.MustParse(seeding.DefaultInstructorUserID),
	}); err != nil {
		return fmt.Errorf("seed course price: %w", err)
	}

	result, err := repos.Purchases.CompleteCheckout(ctx, &models.Purchase{
		ID:              uuid.New(),
		UserID:          studentID,
		CourseID:        courseID,
		AmountCents:     SeedCoursePrice,
		StripeSessionID: SeedCheckoutSession,
	})
	if err != nil {
		return fmt.Errorf("seed purchase: %w", err)
	}
	utils.Logger.Infof("Seeded purchase %s and enrollment %s for the seed student.",
		result.Purchase.ID, result.Enrollment.ID)

	if _, err := repos.Favorites.AddIfAbsent(ctx, &models.Favorite{
		ID:         uuid.New(),
		UserID:     studentID,
		ResourceID: courseID,
	}); err != nil {
		return fmt.Errorf("seed favorite: %w", err)
	}

	// The sentinel goes last so a partial run is retried on the next start.
	welcome := &models.Notification{
		ID:          sentinelID,
		UserID:      studentID,
		Title:       "Welcome to Doctrina",
		Description: "Your first course is ready. Dive in whenever you like.",
		Type:        models.NotificationTypeEnrollment,
		Link:        utils.Ptr("/courses/" + SeedCourseID),
		Metadata:    models.CourseMetadata{CourseID: courseID, CourseName: SeedCourseName},
	}
	if err := repos.Notifications.Create(ctx, welcome); err != nil {
		return fmt.Errorf("seed welcome notification: %w", err)
	}

	utils.Logger.Info("lms-service: Seeding completed successfully.")
	return nil
}
