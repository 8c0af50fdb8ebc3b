package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// GetBalance returns total income minus everything else. Any row whose type
// is not exactly income is subtracted. An empty ledger has a balance of zero.
func (s *SQLiteStorage) GetBalance(ctx context.Context) (float64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var balance float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(
			CASE
				WHEN type = 'income' THEN amount
				ELSE -amount
			END
		), 0.0)
		FROM transactions`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return balance, nil
}

// GetMonthlySummary totals income and expenses per category for one month.
// Rows are selected by a textual YYYY-MM- prefix on the date column, so an
// out-of-range month simply matches nothing unless strict validation is on.
func (s *SQLiteStorage) GetMonthlySummary(ctx context.Context, year, month int) (*model.MonthlySummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if s.strict && (month < 1 || month > 12) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, category, SUM(amount)
		FROM transactions
		WHERE date LIKE ? AND type IN ('income', 'expense')
		GROUP BY type, category`, model.MonthPrefix(year, month)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := model.NewMonthlySummary(year, month)
	for rows.Next() {
		var txnType, category string
		var total float64
		if err := rows.Scan(&txnType, &category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		summary.Add(model.TransactionType(txnType), category, total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly summary: %w", err)
	}

	return summary, nil
}
