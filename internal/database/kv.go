package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KV stores each collection as one row of the collections table.
type KV struct {
	db *DB
}

// NewKV creates a KV backed by db.
func NewKV(db *DB) *KV {
	return &KV{db: db}
}

// Get returns the blob stored under key, reporting ok=false when absent.
func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	query := k.db.SQL.Rebind(`SELECT data FROM collections WHERE name = ?`)
	if err := k.db.SQL.GetContext(ctx, &data, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get collection %s: %w", key, err)
	}
	return []byte(data), true, nil
}

// Put inserts or replaces the blob stored under key.
func (k *KV) Put(ctx context.Context, key string, data []byte) error {
	query := k.db.SQL.Rebind(`
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if _, err := k.db.SQL.ExecContext(ctx, query, key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to put collection %s: %w", key, err)
	}
	return nil
}
