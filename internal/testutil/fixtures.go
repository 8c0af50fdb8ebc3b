package testutil

import "github.com/Veraticus/spice-ledger/internal/model"

// Income builds an income transaction.
func Income(date, category, description string, amount float64) model.Transaction {
	return model.Transaction{
		Date:        date,
		Category:    category,
		Description: description,
		Amount:      amount,
		Type:        model.TransactionTypeIncome,
	}
}

// Expense builds an expense transaction.
func Expense(date, category, description string, amount float64) model.Transaction {
	return model.Transaction{
		Date:        date,
		Category:    category,
		Description: description,
		Amount:      amount,
		Type:        model.TransactionTypeExpense,
	}
}

// SampleOctober2024 is a small month with two income streams and two
// expenses: 10000 in, 180 out, 9820 balance.
func SampleOctober2024() []model.Transaction {
	return []model.Transaction{
		Income("2024-10-01", "Salary", "Monthly salary", 5000),
		Income("2024-10-01", "Streams", "Distrokid", 5000),
		Expense("2024-10-02", "Music", "Music Video", 150),
		Expense("2024-10-03", "Transport", "Promo", 30),
	}
}
