package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/masumislambadsha/zavisoft/pkg/database"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for the kv_entries table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies pending kv_entries migrations.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	return database.RunMigrations(ctx, db, Migrations(), logger)
}

const (
	getQuery    = `SELECT value FROM kv_entries WHERE key = $1`
	insertQuery = `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING`
	updateQuery = `UPDATE kv_entries SET value = $2, updated_at = NOW()
		WHERE key = $1 AND value = $3`
	deleteQuery = `DELETE FROM kv_entries WHERE key = $1`
	pingQuery   = `SELECT 1`
)

// KV implements repository.KV on a PostgreSQL table.
type KV struct {
	db database.DBTX
}

// NewKV creates a PostgreSQL-backed key/value store.
func NewKV(db database.DBTX) *KV {
	return &KV{db: db}
}

// Get retrieves the blob stored under key.
func (r *KV) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, end := database.TraceOp(ctx, database.SystemPostgres, "kv.get", getQuery)
	defer func() { end(err) }()

	var value []byte
	if err := r.db.QueryRow(ctx, getQuery, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("select kv entry %s: %w", key, err)
	}
	return value, nil
}

// CompareAndSet inserts value when old is nil and the key is absent, and
// otherwise updates the row only while it still holds old.
func (r *KV) CompareAndSet(ctx context.Context, key string, old, value []byte) (_ bool, err error) {
	query, args := updateQuery, []any{key, value, old}
	if old == nil {
		query, args = insertQuery, []any{key, value}
	}

	ctx, end := database.TraceOp(ctx, database.SystemPostgres, "kv.compare_and_set", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("write kv entry %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceOp(ctx, database.SystemPostgres, "kv.delete", deleteQuery)
	defer func() { end(err) }()

	if _, err := r.db.Exec(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("delete kv entry %s: %w", key, err)
	}
	return nil
}

// Ping runs a trivial query.
func (r *KV) Ping(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, pingQuery); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}
