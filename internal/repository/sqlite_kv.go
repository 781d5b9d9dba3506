package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pdf-slide-synth/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteKVStore persists values in a single-file SQLite database.
type SQLiteKVStore struct {
	db     *sql.DB
	logger domain.Logger
}

// NewSQLiteKVStore opens path and creates the kv table if needed.
func NewSQLiteKVStore(path string, logger domain.Logger) (*SQLiteKVStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("SQLite job store ready", "path", path)
	return &SQLiteKVStore{db: db, logger: logger}, nil
}

func (s *SQLiteKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	return []byte(value), nil
}

func (s *SQLiteKVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

func (s *SQLiteKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

func (s *SQLiteKVStore) Close() error {
	return s.db.Close()
}
