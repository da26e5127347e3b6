package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KVStore implements storage.KV on the kv_entries table.
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a KVStore on an already migrated database.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT value FROM kv_entries WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value under key.
func (s *KVStore) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key if present.
func (s *KVStore) Remove(key string) error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
