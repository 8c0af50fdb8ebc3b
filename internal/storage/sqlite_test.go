package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// createTestStorage opens a fully initialized file-backed ledger in a temp dir.
func createTestStorage(t *testing.T, opts ...Option) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "finance.db")

	store, err := Open(context.Background(), dbPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// seedSampleLedger inserts the four transactions of the reference month.
func seedSampleLedger(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	for _, txn := range sampleTransactions() {
		_, err := store.AddTransaction(ctx, txn)
		require.NoError(t, err)
	}
}

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{Date: "2024-10-01", Category: "Salary", Description: "Monthly salary", Amount: 5000, Type: model.TransactionTypeIncome},
		{Date: "2024-10-01", Category: "Streams", Description: "Distrokid", Amount: 5000, Type: model.TransactionTypeIncome},
		{Date: "2024-10-02", Category: "Music", Description: "Music Video", Amount: 150, Type: model.TransactionTypeExpense},
		{Date: "2024-10-03", Category: "Transport", Description: "Promo", Amount: 30, Type: model.TransactionTypeExpense},
	}
}

func countCategories(t *testing.T, store *SQLiteStorage) int {
	t.Helper()
	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count))
	return count
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("creates schema and seeds defaults", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		version, err := store.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
		assert.Equal(t, len(model.DefaultCategories), countCategories(t, store))
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "finance.db")
		store, err := Open(ctx, dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("is idempotent across reopen", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "finance.db")

		for i := 0; i < 3; i++ {
			store, err := Open(ctx, dbPath)
			require.NoError(t, err)
			assert.Equal(t, 7, countCategories(t, store), "open #%d", i+1)
			require.NoError(t, store.Close())
		}

		store, err := Open(ctx, dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		salary, err := store.GetCategoryByName(ctx, "Salary")
		require.NoError(t, err)
		require.NotNil(t, salary)
		assert.Equal(t, int64(1), salary.ID)

		// Ignored seed inserts still consume AUTOINCREMENT ids.
		cat, err := store.AddCategory(ctx, "Freelance", model.CategoryTypeIncome)
		require.NoError(t, err)
		assert.Greater(t, cat.ID, int64(8))
	})

	t.Run("repeated seeding on one handle does not duplicate", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		require.NoError(t, store.SeedDefaultCategories(ctx))
		require.NoError(t, store.SeedDefaultCategories(ctx))
		assert.Equal(t, 7, countCategories(t, store))
	})

	t.Run("in-memory ledger", func(t *testing.T) {
		store, err := Open(ctx, MemoryPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		balance, err := store.GetBalance(ctx)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("unusable location is fatal", func(t *testing.T) {
		// A regular file cannot be used as a parent directory.
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		store, err := Open(ctx, blocker)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = Open(ctx, filepath.Join(blocker, "finance.db"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
		assert.ErrorIs(t, err, ErrStoreUnavailable)

		_, err = Open(context.Background(), "")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestSQLiteStorage_Close(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)

	require.NoError(t, store.Close())
	// Closing twice is harmless.
	require.NoError(t, store.Close())

	_, err := store.AddTransaction(ctx, sampleTransactions()[0])
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.AddCategory(ctx, "Gifts", model.CategoryTypeExpense)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.GetBalance(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.GetMonthlySummary(ctx, 2024, 10)
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, err = store.GetTransactions(ctx, model.TransactionFilter{})
	assert.ErrorIs(t, err, ErrStoreClosed)

	assert.ErrorIs(t, store.Migrate(ctx), ErrStoreClosed)
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // exercising the nil guard
	_, err := store.GetBalance(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}
