package model

// MonthlySummary aggregates one calendar month of the ledger by category.
type MonthlySummary struct {
	Income        map[string]float64
	Expenses      map[string]float64
	Year          int
	Month         int
	TotalIncome   float64
	TotalExpenses float64
	NetSavings    float64
}

// NewMonthlySummary returns an empty summary for the given month.
func NewMonthlySummary(year, month int) *MonthlySummary {
	return &MonthlySummary{
		Year:     year,
		Month:    month,
		Income:   make(map[string]float64),
		Expenses: make(map[string]float64),
	}
}

// Add folds one category total into the summary and refreshes the totals.
func (s *MonthlySummary) Add(txnType TransactionType, category string, amount float64) {
	switch txnType {
	case TransactionTypeIncome:
		s.Income[category] += amount
		s.TotalIncome += amount
	case TransactionTypeExpense:
		s.Expenses[category] += amount
		s.TotalExpenses += amount
	default:
		return
	}
	s.NetSavings = s.TotalIncome - s.TotalExpenses
}

// IsEmpty reports whether no transactions contributed to the summary.
func (s *MonthlySummary) IsEmpty() bool {
	return len(s.Income) == 0 && len(s.Expenses) == 0
}

// TransactionFilter narrows a transaction listing. Empty fields are unset;
// set fields combine with AND.
type TransactionFilter struct {
	StartDate string // inclusive, YYYY-MM-DD
	EndDate   string // inclusive, YYYY-MM-DD
	Category  string // exact, case-sensitive
}
