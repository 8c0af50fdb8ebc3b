package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthlySummaryAdd(t *testing.T) {
	s := NewMonthlySummary(2024, 10)
	assert.True(t, s.IsEmpty())

	s.Add(TransactionTypeIncome, "Salary", 5000)
	s.Add(TransactionTypeIncome, "Streams", 5000)
	s.Add(TransactionTypeExpense, "Music", 150)
	s.Add(TransactionTypeExpense, "Transport", 30)
	s.Add("transfer", "Savings", 999)

	assert.False(t, s.IsEmpty())
	assert.Equal(t, map[string]float64{"Salary": 5000, "Streams": 5000}, s.Income)
	assert.Equal(t, map[string]float64{"Music": 150, "Transport": 30}, s.Expenses)
	assert.InDelta(t, 10000, s.TotalIncome, 0.001)
	assert.InDelta(t, 180, s.TotalExpenses, 0.001)
	assert.InDelta(t, 9820, s.NetSavings, 0.001)
}
