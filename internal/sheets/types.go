package sheets

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// CategoryRow is one line of the income or expense breakdown.
type CategoryRow struct {
	Category string
	Amount   decimal.Decimal
}

// TransactionRow is one line of the transaction listing.
type TransactionRow struct {
	Date        string
	Category    string
	Description string
	Type        string
	Amount      decimal.Decimal
}

// MonthlyReport holds everything written for one month. Amounts are
// decimals so that sums shown in the sheet do not drift.
type MonthlyReport struct {
	Title         string
	Income        []CategoryRow
	Expenses      []CategoryRow
	Transactions  []TransactionRow
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	NetSavings    decimal.Decimal
}

// BuildMonthlyReport converts a ledger summary and its transactions into
// report rows. Category rows are ordered by amount, largest first.
func BuildMonthlyReport(summary *model.MonthlySummary, transactions []model.Transaction) MonthlyReport {
	report := MonthlyReport{
		Title:    SheetTitle(summary.Year, summary.Month),
		Income:   categoryRows(summary.Income),
		Expenses: categoryRows(summary.Expenses),
	}

	for _, row := range report.Income {
		report.TotalIncome = report.TotalIncome.Add(row.Amount)
	}
	for _, row := range report.Expenses {
		report.TotalExpenses = report.TotalExpenses.Add(row.Amount)
	}
	report.NetSavings = report.TotalIncome.Sub(report.TotalExpenses)

	report.Transactions = make([]TransactionRow, 0, len(transactions))
	for _, txn := range transactions {
		report.Transactions = append(report.Transactions, TransactionRow{
			Date:        txn.Date,
			Category:    txn.Category,
			Description: txn.Description,
			Type:        string(txn.Type),
			Amount:      toDecimal(txn.Amount),
		})
	}

	return report
}

// SheetTitle names the tab a month is written to, e.g. "2024-10".
func SheetTitle(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// Values renders the report as sheet rows.
func (r MonthlyReport) Values(generatedAt time.Time) [][]any {
	values := make([][]any, 0, 12+len(r.Income)+len(r.Expenses)+len(r.Transactions))

	values = append(values,
		[]any{"Ledger Report", r.Title, "Generated " + generatedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Income", r.TotalIncome.InexactFloat64()},
		[]any{"Total Expenses", r.TotalExpenses.InexactFloat64()},
		[]any{"Net Savings", r.NetSavings.InexactFloat64()},
		[]any{},
		[]any{"Income"},
	)
	for _, row := range r.Income {
		values = append(values, []any{row.Category, row.Amount.InexactFloat64()})
	}

	values = append(values, []any{}, []any{"Expenses"})
	for _, row := range r.Expenses {
		values = append(values, []any{row.Category, row.Amount.InexactFloat64()})
	}

	values = append(values,
		[]any{},
		[]any{"Transaction Details"},
		[]any{"Date", "Category", "Amount", "Type", "Description"},
	)
	for _, txn := range r.Transactions {
		values = append(values, []any{
			txn.Date,
			txn.Category,
			txn.Amount.InexactFloat64(),
			txn.Type,
			txn.Description,
		})
	}

	return values
}

func categoryRows(totals map[string]float64) []CategoryRow {
	rows := make([]CategoryRow, 0, len(totals))
	for category, amount := range totals {
		rows = append(rows, CategoryRow{Category: category, Amount: toDecimal(amount)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].Amount.Cmp(rows[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// toDecimal rounds to cents, the precision the ledger is entered in.
func toDecimal(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}
