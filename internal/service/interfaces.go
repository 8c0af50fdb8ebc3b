// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Ledger defines the contract for our persistence layer.
type Ledger interface {
	// Transaction operations
	AddTransaction(ctx context.Context, txn model.Transaction) (int64, error)
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)

	// Category operations
	AddCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)

	// Reporting
	GetBalance(ctx context.Context) (float64, error)
	GetMonthlySummary(ctx context.Context, year, month int) (*model.MonthlySummary, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter exports a month of ledger activity to an external destination.
type ReportWriter interface {
	WriteMonthlyReport(ctx context.Context, summary *model.MonthlySummary, transactions []model.Transaction) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
