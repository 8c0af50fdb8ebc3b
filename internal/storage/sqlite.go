package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Veraticus/spice-ledger/internal/service"
)

// MemoryPath opens a private in-memory ledger, mainly for tests and demos.
const MemoryPath = ":memory:"

// SQLiteStorage is the ledger store backed by a single SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	closed atomic.Bool
	strict bool
}

var _ service.Ledger = (*SQLiteStorage)(nil)

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithStrictValidation rejects malformed dates, non-positive amounts and unknown
// types instead of storing them as-is.
func WithStrictValidation() Option {
	return func(s *SQLiteStorage) {
		s.strict = true
	}
}

// Open opens or creates the ledger at dbPath, brings the schema up to date
// and seeds the default categories. It is safe to call repeatedly against
// the same file.
func Open(ctx context.Context, dbPath string, opts ...Option) (*SQLiteStorage, error) {
	store, err := NewSQLiteStorage(dbPath, opts...)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := store.SeedDefaultCategories(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return store, nil
}

// NewSQLiteStorage opens the database file without touching the schema.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", ErrStoreUnavailable, err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStoreUnavailable, err)
	}

	// One logical connection: the ledger assumes a single writer, and an
	// in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrStoreUnavailable, err)
	}

	s := &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	slog.Debug("opened ledger database", "path", dbPath, "strict", s.strict)
	return s, nil
}

// Path returns the location the store was opened from.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close releases the database handle. Every later call fails with ErrStoreClosed.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// NewCheckpointManager creates a checkpoint manager for this store.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if err := s.ready(context.Background()); err != nil {
		return nil, err
	}
	return NewCheckpointManager(s)
}

// ready guards every public operation.
func (s *SQLiteStorage) ready(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}
