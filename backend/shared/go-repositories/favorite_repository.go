// go-repositories/favorite_repository.go

package repositories

import (
	"context"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type FavoriteRepository interface {
	AddIfAbsent(ctx context.Context, f *models.Favorite) (*models.Favorite, error)
	Get(ctx context.Context, userID, resourceID uuid.UUID) (*models.Favorite, error)
	Delete(ctx context.Context, userID, resourceID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error)
}

type favoriteRepo struct {
	db DB
}

func NewFavoriteRepository(db DB) FavoriteRepository {
	return &favoriteRepo{db: db}
}

func baseSelectFavorite() string {
	return `SELECT id, user_id, resource_id, created_at FROM favorites`
}

func scanFavorite(row pgx.Row) (*models.Favorite, error) {
	var f models.Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.ResourceID, &f.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// AddIfAbsent returns the stored favorite, which keeps its original id when
// the pair was already present.
func (r *favoriteRepo) AddIfAbsent(ctx context.Context, f *models.Favorite) (*models.Favorite, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO favorites (id, user_id, resource_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, resource_id) DO NOTHING
	`, f.ID, f.UserID, f.ResourceID); err != nil {
		return nil, err
	}
	return r.Get(ctx, f.UserID, f.ResourceID)
}

func (r *favoriteRepo) Get(ctx context.Context, userID, resourceID uuid.UUID) (*models.Favorite, error) {
	return scanFavorite(r.db.QueryRow(ctx,
		baseSelectFavorite()+" WHERE user_id=$1 AND resource_id=$2", userID, resourceID))
}

func (r *favoriteRepo) Delete(ctx context.Context, userID, resourceID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND resource_id=$2`, userID, resourceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	rows, err := r.db.Query(ctx, baseSelectFavorite()+" WHERE user_id=$1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
