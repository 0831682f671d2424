package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/daoban/internal/db"
)

// SQLiteCacheRepo implements CacheRepo on the kv_cache table.
type SQLiteCacheRepo struct {
	db db.DBTX
}

// NewSQLiteCacheRepo creates a new SQLiteCacheRepo.
func NewSQLiteCacheRepo(conn db.DBTX) *SQLiteCacheRepo {
	return &SQLiteCacheRepo{db: conn}
}

func (r *SQLiteCacheRepo) Get(ctx context.Context, key string) (*CacheEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM kv_cache WHERE key = ?`, key)

	var (
		e         CacheEntry
		value     string
		updatedAt sql.NullString
	)
	if err := row.Scan(&e.Key, &value, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cache entry %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning cache entry %q: %w", key, err)
	}
	e.Value = []byte(value)
	e.UpdatedAt = parseNullableTime(updatedAt)
	return &e, nil
}

func (r *SQLiteCacheRepo) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(value), nowUTC()); err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (r *SQLiteCacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := fmt.Sprintf(`DELETE FROM kv_cache WHERE key IN (%s)`, placeholders(len(keys)))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting cache entries: %w", err)
	}
	return nil
}

func (r *SQLiteCacheRepo) List(ctx context.Context) ([]CacheEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv_cache ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var (
			e         CacheEntry
			value     string
			updatedAt sql.NullString
		)
		if err := rows.Scan(&e.Key, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		e.Value = []byte(value)
		e.UpdatedAt = parseNullableTime(updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
