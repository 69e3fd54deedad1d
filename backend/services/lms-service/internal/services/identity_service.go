package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultDisplayName = "Learner"

// IdentityService maps auth-provider identities onto local users.
type IdentityService struct {
	userRepo repositories.UserRepository
}

func NewIdentityService(userRepo repositories.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

/*
EnsureUser returns the local user for identity, creating or linking it on
first sight:

 1. a user already linked to identity.Subject is returned as-is;
 2. otherwise a user with the same email (case-insensitive) and no linked
    subject gets linked;
 3. otherwise a new student is created.

Concurrent first requests for the same subject race on the database's
unique constraints; the loser re-reads and returns the winner's row.
*/
func (s *IdentityService) EnsureUser(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "Authentication required",
			Err:        utils.ErrUnauthenticated,
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		user, err := s.resolveOnce(ctx, identity)
		if err == nil {
			return user, nil
		}
		if !repositories.IsUniqueViolation(err, "") {
			return nil, err
		}
		utils.Logger.WithField("subject", identity.Subject).
			Debug("Lost user creation race; re-reading")
		lastErr = err
	}
	return nil, utils.NewInternalError("Could not resolve user", lastErr)
}

func (s *IdentityService) resolveOnce(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, identity.Subject)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user", err)
	}
	if user != nil {
		return user, nil
	}

	email := strings.TrimSpace(identity.Email)
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, utils.NewInternalError("Could not load user", err)
		}
		if user != nil {
			return s.link(ctx, user, identity)
		}
	}

	user = &models.User{
		ID:         uuid.New(),
		ExternalID: utils.Ptr(identity.Subject),
		Name:       displayName(identity),
		Email:      email,
		Image:      utils.NilIfEmpty(identity.Image),
		Role:       models.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, err
		}
		return nil, utils.NewInternalError("Could not create user", err)
	}
	utils.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"subject": identity.Subject,
	}).Info("Created user for new identity")
	return user, nil
}

// link attaches identity.Subject to an existing user found by email.
func (s *IdentityService) link(ctx context.Context, user *models.User, identity *models.ExternalIdentity) (*models.User, error) {
	if user.ExternalID != nil && *user.ExternalID != identity.Subject {
		return nil, conflictError("Email is already linked to another account")
	}

	err := s.userRepo.UpdateWithRetry(ctx, user.ID, func(stored *models.User) error {
		if stored.ExternalID != nil && *stored.ExternalID != identity.Subject {
			return conflictError("Email is already linked to another account")
		}
		stored.ExternalID = utils.Ptr(identity.Subject)
		if stored.Image == nil {
			stored.Image = utils.NilIfEmpty(identity.Image)
		}
		return nil
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) || repositories.IsUniqueViolation(err, "") {
			return nil, err
		}
		return nil, utils.NewInternalError("Could not link user", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"subject": identity.Subject,
	}).Info("Linked identity to existing user by email")
	return s.userRepo.GetByID(ctx, user.ID)
}

// GetCurrentUser is the read-only variant of EnsureUser.
func (s *IdentityService) GetCurrentUser(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, utils.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByExternalID(ctx, identity.Subject)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user", err)
	}
	if user == nil {
		return nil, utils.NewNotFoundError("User not found")
	}
	return user, nil
}

// SetRole changes another user's role. Only admins may call it.
func (s *IdentityService) SetRole(ctx context.Context, actor *models.User, userID uuid.UUID, role models.RoleType) (*models.User, error) {
	if actor == nil || !actor.HasRole(models.RoleAdmin) {
		return nil, forbiddenError("Only admins can change roles")
	}
	err := s.userRepo.UpdateWithRetry(ctx, userID, func(stored *models.User) error {
		stored.Role = role
		return nil
	})
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Could not update role", err)
	}
	utils.Logger.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"user_id":  userID,
		"role":     role,
	}).Info("User role changed")
	return s.userRepo.GetByID(ctx, userID)
}

func displayName(identity *models.ExternalIdentity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return defaultDisplayName
}
