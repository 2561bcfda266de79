// Package storage provides durable local key-value persistence backed by
// SQLite. It holds the anniversary document, the couple identifier and the
// theme preference, one key each, as plain JSON/text values.
package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
)

// Well-known keys. The document and couple id keys mirror the browser
// localStorage entries this storage replaces.
const (
	KeyDocument = "love_anniversary_data"
	KeyCoupleID = "couple_id"
	KeyTheme    = "love_theme"
	KeyLastSync = "love_last_sync"
)

// KV wraps the sql.DB holding the key-value table.
type KV struct {
	db *sql.DB
}

// Open opens the SQLite database under dataDir with:
// - WAL mode for concurrent reads during writes
// - a single writer connection (SQLite supports one)
// - the kv table created if missing
func Open(dataDir string) (*KV, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to create data directory", err)
	}

	dbPath := filepath.Join(dataDir, "anniversary.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to open database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to enable WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to set busy timeout", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY CHECK(length(key) > 0),
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to create kv table", err)
	}

	return &KV{db: db}, nil
}

// Get returns the value stored under key. A missing key is reported with
// the KEY_NOT_FOUND code so callers can fall back to defaults.
func (kv *KV) Get(key string) (string, error) {
	var value string
	err := kv.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.New(apperrors.ErrKeyNotFound, "key not found: "+key)
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorageRead, "failed to read key "+key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (kv *KV) Put(key, value string) error {
	_, err := kv.db.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "failed to write key "+key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *KV) Delete(key string) error {
	if _, err := kv.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "failed to delete key "+key, err)
	}
	return nil
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}
