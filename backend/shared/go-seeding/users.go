package seeding

import (
	"context"
	"fmt"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
)

// Fixed ids so every environment seeded with test data agrees on them.
const (
	DefaultAdminUserID      = "11111111-2222-4333-8444-555555555555"
	DefaultInstructorUserID = "22222222-3333-4444-8555-666666666666"
	DefaultStudentUserID    = "33333333-4444-4555-8666-777777777777"

	DefaultAdminExternalID      = "seed_admin"
	DefaultInstructorExternalID = "seed_instructor"
	DefaultStudentExternalID    = "seed_student"
)

type seedUser struct {
	id         string
	externalID string
	name       string
	email      string
	role       models.RoleType
}

var defaultUsers = []seedUser{
	{DefaultAdminUserID, DefaultAdminExternalID, "Seed Admin", "admin@seed.doctrina.dev", models.RoleAdmin},
	{DefaultInstructorUserID, DefaultInstructorExternalID, "Seed Instructor", "instructor@seed.doctrina.dev", models.RoleInstructor},
	{DefaultStudentUserID, DefaultStudentExternalID, "Seed Student", "student@seed.doctrina.dev", models.RoleStudent},
}

// SeedDefaultUsers creates one user per role. Users that already exist are
// left untouched, so it is safe to run on every start.
func SeedDefaultUsers(ctx context.Context, userRepo repositories.UserRepository) error {
	for _, su := range defaultUsers {
		id := uuid.MustParse(su.id)

		existing, err := userRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("error checking for existing %s user: %w", su.role, err)
		}
		if existing != nil {
			utils.Logger.Infof("Default %s already exists (ID=%s); skipping seed.", su.role, existing.ID)
			continue
		}

		u := &models.User{
			ID:         id,
			ExternalID: utils.Ptr(su.externalID),
			Name:       su.name,
			Email:      su.email,
			Role:       su.role,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			if repositories.IsUniqueViolation(err, "") {
				utils.Logger.Infof("Default %s inserted concurrently; skipping.", su.role)
				continue
			}
			return fmt.Errorf("failed to insert default %s: %w", su.role, err)
		}
		utils.Logger.Infof("Seeded default %s (ID=%s, email=%s).", su.role, u.ID, u.Email)
	}
	return nil
}
