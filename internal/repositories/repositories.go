// package repositories provides persistence layer implementations for the catalog tables.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// base carries the querier and dialect shared by every repository.
type base struct {
	q       Querier
	dialect shared.Dialect
}

func (b base) exec(ctx context.Context, query string, args ...any) error {
	_, err := b.q.ExecContext(ctx, b.dialect.Rebind(query), args...)
	return err
}

func (b base) row(ctx context.Context, query string, args ...any) *sql.Row {
	return b.q.QueryRowContext(ctx, b.dialect.Rebind(query), args...)
}

// findID runs a single-column id lookup. A missing row is reported as found=false.
func (b base) findID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := b.row(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// insertID runs an INSERT ... RETURNING id statement.
func (b base) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := b.row(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func storageErr(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", shared.ErrStorage, action, err)
}
