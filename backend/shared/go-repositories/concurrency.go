package repositories

import (
	"context"
	"fmt"

	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

// DefaultMaxRetries bounds the optimistic-lock loop for every versioned
// table.
const DefaultMaxRetries = 3

// Versioned is implemented by pointer entities whose table carries a
// row_version column (see models.Versioned).
type Versioned interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

type LoadFunc[T Versioned] func(ctx context.Context, id uuid.UUID) (T, error)

// CompareAndSwapFunc writes entity only if its stored row_version still
// equals expected, bumping it by one.
type CompareAndSwapFunc[T Versioned] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

/*
WithRetry loads the row, applies mutate and writes it back guarded by
row_version, starting over when a concurrent writer won. A missing row yields
utils.ErrNotFound and running out of attempts yields
utils.ErrRowVersionConflict. An error from mutate aborts without writing.
*/
func WithRetry[T Versioned](
	ctx context.Context,
	maxAttempts int,
	id uuid.UUID,
	load LoadFunc[T],
	swap CompareAndSwapFunc[T],
	mutate func(T) error,
) error {
	var missing T
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		current, err := load(ctx, id)
		if err != nil {
			return err
		}
		if current == missing {
			return utils.ErrNotFound
		}

		expected := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}

		tag, err := swap(ctx, current, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(expected + 1)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("row %s changed %d times while updating: %w", id, maxAttempts, utils.ErrRowVersionConflict)
}
