package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleAdmin      RoleType = "admin"
	RoleInstructor RoleType = "instructor"
	RoleStudent    RoleType = "student"
)

// ParseRole converts user input into a RoleType.
func ParseRole(s string) (RoleType, error) {
	switch r := RoleType(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// User is the local identity record. ExternalID is nil until the record is
// linked to an auth-provider subject.
type User struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	ExternalID *string   `json:"external_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Image      *string   `json:"image,omitempty"`
	Role       RoleType  `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...RoleType) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// ExternalIdentity is the authenticated principal handed to us by the auth
// provider. Subject is always present; the profile fields are optional.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Image   string
}
