package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: UsersEmailKey}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: NotificationsUserFKey}
	wrapped := fmt.Errorf("insert notification: %w", fk)

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, UsersEmailKey))
	assert.False(t, IsUniqueViolation(unique, UsersExternalIDKey))
	assert.False(t, IsUniqueViolation(fk, ""))

	assert.True(t, IsForeignKeyViolation(wrapped, ""))
	assert.True(t, IsForeignKeyViolation(wrapped, NotificationsUserFKey))
	assert.False(t, IsForeignKeyViolation(wrapped, "purchases_user_id_fkey"))
	assert.False(t, IsForeignKeyViolation(unique, ""))
	assert.False(t, IsForeignKeyViolation(errors.New("boom"), ""))
}
