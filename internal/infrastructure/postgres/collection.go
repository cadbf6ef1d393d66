package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-clinic-scheduler/internal/domain/repository"
)

const uniqueViolation = "23505"

// table maps one entity type onto one table with a text primary key "id".
type table[T any] struct {
	name    string
	columns string
	upsert  string
	args    func(T) []any
	id      func(T) string
	scan    func(pgx.Rows) (T, error)
}

func (t table[T]) loadAll(ctx context.Context, pool *pgxpool.Pool) ([]T, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, t.columns, t.name))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return out, nil
}

// saveAll makes the table equal to items in a single transaction: every item
// is upserted and rows whose id is absent from items are deleted.
func (t table[T]) saveAll(ctx context.Context, pool *pgxpool.Pool, items []T) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", t.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]string, len(items))
	batch := &pgx.Batch{}
	for i, it := range items {
		ids[i] = t.id(it)
		batch.Queue(t.upsert, t.args(it)...)
	}
	batch.Queue(fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, t.name), ids)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("write %s: %w: %s: %w", t.name, repository.ErrConflict, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("write %s: %w", t.name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", t.name, err)
	}
	return nil
}
