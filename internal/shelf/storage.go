// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shelf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Namespace is the fixed key the bookshelf payload is stored under.
const Namespace = "ol_bookshelf_v1"

const dbFile = "book-nook.db"

// ErrNotFound is returned by Storage.Load when nothing has been saved yet.
var ErrNotFound = errors.New("no stored bookshelf")

// Storage holds one opaque payload: the full serialized bookshelf.
// Save always replaces the whole payload.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// --- SQLite ---

// SQLiteStorage keeps the payload in a namespaced key/value table.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite opens or creates dir/book-nook.db.
func OpenSQLite(dir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		namespace TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Load returns the stored payload or ErrNotFound.
func (s *SQLiteStorage) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM kv WHERE namespace = ?`, Namespace,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading bookshelf: %w", err)
	}
	return payload, nil
}

// Save replaces the stored payload in a single transaction.
func (s *SQLiteStorage) Save(ctx context.Context, payload []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (namespace, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		Namespace, payload, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing bookshelf: %w", err)
	}
	return tx.Commit()
}

// --- File ---

// FileStorage keeps the payload in dir/ol_bookshelf_v1.json. Writes go to a
// temp file that is synced and renamed over the target, so a crash leaves
// either the old or the new snapshot.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage rooted at dir.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, Namespace+".json")}
}

// Path returns the snapshot file path.
func (f *FileStorage) Path() string { return f.path }

// Load returns the file contents or ErrNotFound.
func (f *FileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file.
func (f *FileStorage) Save(_ context.Context, payload []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, Namespace+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// --- Memory ---

// MemoryStorage keeps the payload in process memory.
type MemoryStorage struct {
	mu      sync.Mutex
	payload []byte
	stored  bool

	// Loads counts Load calls.
	Loads int
	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
}

// NewMemoryStorage returns a MemoryStorage seeded with payload. A nil
// payload means nothing is stored.
func NewMemoryStorage(payload []byte) *MemoryStorage {
	return &MemoryStorage{payload: payload, stored: payload != nil}
}

// Load returns a copy of the payload or ErrNotFound.
func (m *MemoryStorage) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if !m.stored {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.payload...), nil
}

// Save replaces the payload.
func (m *MemoryStorage) Save(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.payload = append([]byte(nil), payload...)
	m.stored = true
	return nil
}

// Payload returns the last saved payload.
func (m *MemoryStorage) Payload() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.payload...)
}
