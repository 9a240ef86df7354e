package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	kvGetQuery = `SELECT value FROM kv_store WHERE key = $1`
	kvSetQuery = `INSERT INTO kv_store (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	kvDeleteQuery = `DELETE FROM kv_store WHERE key = $1`
)

// KVPostgres keeps values in the kv_store table created by migrations.
type KVPostgres struct {
	db *pgxpool.Pool
}

func NewKVPostgres(db *pgxpool.Pool) *KVPostgres {
	return &KVPostgres{db: db}
}

func (r *KVPostgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRow(ctx, kvGetQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query key %s: %w", key, err)
	}
	return value, true, nil
}

func (r *KVPostgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.Exec(ctx, kvSetQuery, key, value); err != nil {
		return fmt.Errorf("upsert key %s: %w", key, err)
	}
	return nil
}

func (r *KVPostgres) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, kvDeleteQuery, key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}
