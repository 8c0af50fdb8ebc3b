package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// databasePath resolves the ledger location from config, falling back to the
// XDG data directory.
func databasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		return config.DefaultDatabasePath()
	}
	if dbPath == storage.MemoryPath {
		return dbPath
	}
	return config.ExpandPath(dbPath)
}

// initStorage opens the ledger, migrating and seeding it as needed.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	return openStorage(ctx, databasePath())
}

// openStorage opens the ledger at dbPath with the configured options.
func openStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	var opts []storage.Option
	if viper.GetBool("ledger.strict_validation") {
		opts = append(opts, storage.WithStrictValidation())
	}

	store, err := storage.Open(ctx, dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return store, nil
}

// parseMonth accepts "YYYY-MM"; an empty value means the current month.
func parseMonth(value string, now time.Time) (int, int, error) {
	if strings.TrimSpace(value) == "" {
		return now.Year(), int(now.Month()), nil
	}

	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: use YYYY-MM", value)
	}
	return parsed.Year(), int(parsed.Month()), nil
}

// parseDateFlag validates an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(model.DateLayout, value); err != nil {
		return "", fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, value)
	}
	return value, nil
}

func parseTransactionType(value string) (model.TransactionType, error) {
	switch strings.ToLower(value) {
	case "income", "i":
		return model.TransactionTypeIncome, nil
	case "expense", "e":
		return model.TransactionTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid type %q: use income or expense", value)
	}
}

func closeStore(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close ledger", "error", err)
	}
}
