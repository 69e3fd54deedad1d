// go-repositories/user_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// Constraint names, see 0001_init.sql.
const (
	UsersExternalIDKey = "users_external_id_key"
	UsersEmailKey      = "users_email_lower_key"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error
}

type userRepo struct {
	versionedTable[*models.User]
	db DB
}

func NewUserRepository(db DB) UserRepository {
	r := &userRepo{db: db}
	selectStmt := baseSelectUser() + " WHERE id=$1"
	r.versionedTable = newVersionedTable(db, selectStmt, r.scanUser)
	return r
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (
			id, external_id, name, email, image, role,
			created_at, updated_at, row_version
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING created_at, updated_at, row_version
	`,
		u.ID, u.ExternalID, u.Name, utils.NilIfEmpty(u.Email), u.Image, string(u.Role),
	)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt, &u.RowVersion)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.load(ctx, id)
}

func (r *userRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE external_id=$1", externalID)
	return r.scanUser(row)
}

// GetByEmail matches case-insensitively, mirroring the unique index.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE LOWER(email)=LOWER($1)", email)
	return r.scanUser(row)
}

func (r *userRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE users SET
			external_id=$1, name=$2, email=$3, image=$4, role=$5,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$6 AND row_version=$7`,
		u.ExternalID, u.Name, utils.NilIfEmpty(u.Email), u.Image, string(u.Role),
		u.ID, expected,
	)
}

func (r *userRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	return r.updateWithRetry(ctx, id, r.UpdateIfVersion, mutate)
}

func baseSelectUser() string {
	return `
		SELECT id, external_id, name, email, image, role,
		       created_at, updated_at, row_version
		FROM users`
}

func (r *userRepo) scanUser(row pgx.Row) (*models.User, error) {
	var (
		u     models.User
		email *string
		role  string
	)
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Name, &email, &u.Image, &role,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Email = utils.Val(email)
	u.Role = models.RoleType(role)
	return &u, nil
}
