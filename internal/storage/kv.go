package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for keys with no stored value.
var ErrNotFound = errors.New("storage: key not found")

// KV is an opaque key-value store backed by SQLite. It persists the
// filter snapshot, history blobs, and display preferences. Callers
// never depend on it succeeding; every read failure means "use
// defaults" and every write failure is logged and dropped.
type KV struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the store at path, creating parent directories
// as needed.
func Open(path string, logger *zap.Logger) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}

	// Single writer; the render loop is the only mutator.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS kv (
			key       TEXT PRIMARY KEY,
			value     BLOB NOT NULL,
			stored_at INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init kv schema: %w", err)
	}

	return &KV{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *KV) Close() error {
	return s.db.Close()
}

// GetBlob returns the stored bytes and unix timestamp for key.
func (s *KV) GetBlob(key string) ([]byte, int64, error) {
	var (
		value    []byte
		storedAt int64
	)
	err := s.db.QueryRow(
		`SELECT value, stored_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, storedAt, nil
}

// PutBlob stores bytes under key with the given unix timestamp.
func (s *KV) PutBlob(key string, data []byte, storedAt int64) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		key, data, storedAt)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

// GetJSON unmarshals the value stored under key into out. Missing keys
// and undecodable values both come back as errors for the caller to
// fall back on defaults.
func (s *KV) GetJSON(key string, out any) error {
	data, _, err := s.GetBlob(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("kv decode %q: %w", key, err)
	}
	return nil
}

// PutJSON marshals v and stores it under key. Failures are logged and
// swallowed; persistence is best-effort by contract.
func (s *KV) PutJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("KV marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.PutBlob(key, data, time.Now().Unix()); err != nil {
		s.logger.Warn("KV write failed", zap.String("key", key), zap.Error(err))
	}
}
