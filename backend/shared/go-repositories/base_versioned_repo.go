package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// versionedTable is embedded by repositories of row-versioned tables. It
// owns the select-by-id query and the scanner so the retry loop can reload
// rows on its own.
type versionedTable[T Versioned] struct {
	db         DB
	selectByID string
	scan       func(pgx.Row) (T, error)
}

func newVersionedTable[T Versioned](db DB, selectByID string, scan func(pgx.Row) (T, error)) versionedTable[T] {
	return versionedTable[T]{db: db, selectByID: selectByID, scan: scan}
}

func (t versionedTable[T]) load(ctx context.Context, id uuid.UUID) (T, error) {
	return t.scan(t.db.QueryRow(ctx, t.selectByID, id))
}

func (t versionedTable[T]) updateWithRetry(
	ctx context.Context,
	id uuid.UUID,
	swap CompareAndSwapFunc[T],
	mutate func(T) error,
) error {
	return WithRetry(ctx, DefaultMaxRetries, id, t.load, swap, mutate)
}
