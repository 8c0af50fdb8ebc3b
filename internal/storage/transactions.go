package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// AddTransaction appends one transaction and commits it before returning.
// It returns the id the store assigned.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn model.Transaction) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn, s.strict); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (date, category, description, amount, type)
		VALUES (?, ?, ?, ?, ?)`,
		txn.Date,
		txn.Category,
		txn.Description,
		txn.Amount,
		string(txn.Type),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	slog.Debug("added transaction",
		"id", id,
		"date", txn.Date,
		"category", txn.Category,
		"amount", txn.Amount,
		"type", txn.Type)
	return id, nil
}

// GetTransactions lists transactions matching the filter, newest date first.
// Transactions on the same date are returned newest id first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var query strings.Builder
	query.WriteString(`
		SELECT id, date, category, description, amount, type
		FROM transactions
		WHERE 1=1`)

	var args []any
	// Dates compare as text, which is chronological for YYYY-MM-DD.
	if filter.StartDate != "" {
		query.WriteString(" AND date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query.WriteString(" AND date <= ?")
		args = append(args, filter.EndDate)
	}
	if filter.Category != "" {
		query.WriteString(" AND category = ?")
		args = append(args, filter.Category)
	}
	query.WriteString(" ORDER BY date DESC, id DESC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var txnType string
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Category, &txn.Description, &txn.Amount, &txnType); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = model.TransactionType(txnType)
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CountTransactions returns the number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
