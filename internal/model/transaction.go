// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// DateLayout is the textual form every ledger date is stored in.
// Range and month filters compare dates as strings, so they are only
// chronological when this zero-padded layout is respected.
const DateLayout = "2006-01-02"

// TransactionType carries the direction of a transaction.
type TransactionType string

const (
	// TransactionTypeIncome marks money coming in.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense marks money going out.
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single ledger entry.
// Amount is always a magnitude; the sign is implied by Type.
type Transaction struct {
	Date        string // YYYY-MM-DD
	Category    string // soft reference to Category.Name
	Description string
	Type        TransactionType
	Amount      float64
	ID          int64
}

// SignedAmount returns the amount as it contributes to the balance. Only
// income adds; every other type subtracts.
func (t Transaction) SignedAmount() float64 {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return -t.Amount
}

// MonthPrefix returns the textual prefix matched by a monthly summary,
// e.g. "2024-10-" for October 2024.
func MonthPrefix(year, month int) string {
	return fmt.Sprintf("%d-%02d-", year, month)
}

// InMonth reports whether the transaction date textually starts with the
// month prefix. It mirrors the store's LIKE match.
func (t Transaction) InMonth(year, month int) bool {
	return strings.HasPrefix(t.Date, MonthPrefix(year, month))
}
