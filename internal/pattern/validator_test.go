package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		rule    Rule
		wantErr bool
	}{
		{
			name: "plain rule",
			rule: Rule{DescriptionPattern: "cafe", Category: "Food"},
		},
		{
			name: "regex with amount condition",
			rule: Rule{
				DescriptionPattern: `^netflix`, IsRegex: true, Category: "Entertainment",
				AmountCondition: model.AmountLessEqual, AmountValue: floatPtr(20),
			},
		},
		{
			name:    "missing category",
			rule:    Rule{DescriptionPattern: "cafe"},
			wantErr: true,
			errMsg:  "category is required",
		},
		{
			name:    "unknown type",
			rule:    Rule{Category: "Food", Type: "transfer"},
			wantErr: true,
			errMsg:  "unknown type",
		},
		{
			name:    "regex without pattern",
			rule:    Rule{Category: "Food", IsRegex: true},
			wantErr: true,
			errMsg:  "regex rules need a pattern",
		},
		{
			name:    "bad regex",
			rule:    Rule{Category: "Food", IsRegex: true, DescriptionPattern: "(unclosed"},
			wantErr: true,
		},
		{
			name:    "comparison without value",
			rule:    Rule{Category: "Food", AmountCondition: model.AmountGreaterThan},
			wantErr: true,
			errMsg:  "gt needs amount_value",
		},
		{
			name:    "empty range",
			rule:    Rule{Category: "Food", AmountCondition: model.AmountRange},
			wantErr: true,
			errMsg:  "range needs",
		},
		{
			name: "inverted range",
			rule: Rule{
				Category: "Food", AmountCondition: model.AmountRange,
				AmountMin: floatPtr(50), AmountMax: floatPtr(10),
			},
			wantErr: true,
			errMsg:  "amount_min exceeds amount_max",
		},
		{
			name:    "unknown condition",
			rule:    Rule{Category: "Food", AmountCondition: "between"},
			wantErr: true,
			errMsg:  "unknown amount condition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRule)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateCategoryType(t *testing.T) {
	salary := model.Category{Name: "Salary", Type: model.CategoryTypeIncome}
	food := model.Category{Name: "Food", Type: model.CategoryTypeExpense}

	income := model.Transaction{Type: model.TransactionTypeIncome, Amount: 5000}
	spend := model.Transaction{Type: model.TransactionTypeExpense, Amount: 12}

	assert.NoError(t, ValidateCategoryType(income, salary))
	assert.NoError(t, ValidateCategoryType(spend, food))

	err := ValidateCategoryType(spend, salary)
	assert.ErrorContains(t, err, `category "Salary" has type income but transaction is expense`)
}
