package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateKey is returned when a write hits a unique constraint. It
// covers the window between a uniqueness check and the insert.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrRowNotFound is returned by updates whose target row no longer exists.
var ErrRowNotFound = errors.New("row not found")

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// wrapWriteError converts unique violations into ErrDuplicateKey.
func wrapWriteError(action string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("failed to %s: %w: %s", action, ErrDuplicateKey, pgErr.ConstraintName)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// containsPattern returns an ILIKE pattern matching s anywhere, with the
// LIKE wildcards in s escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// jsonb encodes v for a JSONB column. Nil slices are stored as [].
func jsonb[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

// nullableJSON maps an empty document to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// rawJSON converts a scanned nullable JSONB column.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// count runs the COUNT(*) variant of a list query.
func count(ctx context.Context, q querier, builder squirrel.SelectBuilder) (int, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}
