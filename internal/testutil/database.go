// Package testutil provides test utilities for ledger storage.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	// IDs holds the ids assigned to seeded transactions, in insertion order.
	IDs []int64
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup  func(context.Context, *storage.SQLiteStorage) error
	Categories   []model.Category
	Transactions []model.Transaction
	// OnDisk places the ledger in t.TempDir() instead of memory, which
	// checkpoints and reopen tests need.
	OnDisk bool
	Strict bool
}

// SetupTestDB creates a fully initialized in-memory ledger seeded with txns.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.SampleOctober2024()...)
//	balance, err := db.Storage.GetBalance(ctx)
func SetupTestDB(t *testing.T, txns ...model.Transaction) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Transactions: txns})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	path := storage.MemoryPath
	if opts.OnDisk {
		path = filepath.Join(t.TempDir(), "finance.db")
	}

	var storeOpts []storage.Option
	if opts.Strict {
		storeOpts = append(storeOpts, storage.WithStrictValidation())
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, path, storeOpts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}

	for _, cat := range opts.Categories {
		if _, err := store.AddCategory(ctx, cat.Name, cat.Type); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}

	for _, txn := range opts.Transactions {
		db.MustAdd(txn)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustAdd inserts a transaction or fails the test.
func (db *TestDB) MustAdd(txn model.Transaction) int64 {
	db.t.Helper()
	id, err := db.Storage.AddTransaction(context.Background(), txn)
	if err != nil {
		db.t.Fatalf("failed to seed transaction %+v: %v", txn, err)
	}
	db.IDs = append(db.IDs, id)
	return id
}
