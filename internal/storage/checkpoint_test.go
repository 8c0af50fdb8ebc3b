package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestCheckpointManager_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()
	seedSampleLedger(t, store)

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	info, err := cm.Create(ctx, "before-import", "Before OFX import")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, "Before OFX import", info.Description)
	assert.Equal(t, 4, info.Transactions)
	assert.Equal(t, 7, info.Categories)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)

	checkpointDir := filepath.Join(filepath.Dir(store.Path()), "checkpoints")
	assert.FileExists(t, filepath.Join(checkpointDir, "before-import.db"))
	assert.FileExists(t, filepath.Join(checkpointDir, "before-import.meta.json"))

	// Listing is ordered by creation time.
	time.Sleep(10 * time.Millisecond)
	_, err = cm.Create(ctx, "", "auto")
	require.NoError(t, err)

	checkpoints, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, checkpoints, 2)
	assert.Equal(t, "auto", checkpoints[0].Description)
	assert.Equal(t, "before-import", checkpoints[1].ID)

	var stored int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM checkpoint_metadata").Scan(&stored))
	assert.Equal(t, 2, stored)
}

func TestCheckpointManager_CreateErrors(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "dup", "")
	require.NoError(t, err)

	_, err = cm.Create(ctx, "dup", "")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	for _, tag := range []string{"../escape", "a/b", `a\b`} {
		_, err = cm.Create(ctx, tag, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointTag, tag)
	}
}

func TestCheckpointManager_Restore(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)
	seedSampleLedger(t, store)
	dbPath := store.Path()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "snapshot", "")
	require.NoError(t, err)

	_, err = store.AddTransaction(ctx, model.Transaction{
		Date: "2024-10-20", Category: "Food", Description: "Dinner", Amount: 80, Type: model.TransactionTypeExpense,
	})
	require.NoError(t, err)

	require.NoError(t, cm.Restore(ctx, "snapshot"))

	// The manager closed the store as part of the restore.
	_, err = store.GetBalance(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)

	reopened, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	balance, err := reopened.GetBalance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 9820.0, balance, 1e-9)

	_, err = os.Stat(dbPath + ".restore-backup")
	assert.True(t, os.IsNotExist(err))
}

func TestCheckpointManager_RestoreMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	err = cm.Restore(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)

	// A failed restore leaves the store usable.
	_, err = store.GetBalance(context.Background())
	assert.NoError(t, err)
}

func TestCheckpointManager_RestoreCorrupted(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "broken", "")
	require.NoError(t, err)

	checkpointPath := filepath.Join(filepath.Dir(store.Path()), "checkpoints", "broken.db")
	require.NoError(t, os.WriteFile(checkpointPath, []byte("definitely not sqlite"), 0600))

	err = cm.Restore(ctx, "broken")
	assert.Error(t, err)

	_, err = store.GetBalance(ctx)
	assert.NoError(t, err)
}

func TestCheckpointManager_Delete(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "old", "")
	require.NoError(t, err)

	require.NoError(t, cm.Delete(ctx, "old"))
	assert.ErrorIs(t, cm.Delete(ctx, "old"), ErrCheckpointNotFound)

	checkpoints, err := cm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, checkpoints)
}

func TestCheckpointManager_MemoryLedger(t *testing.T) {
	store, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.NewCheckpointManager()
	assert.ErrorIs(t, err, ErrCheckpointUnsupported)
}
