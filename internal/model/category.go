package model

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// IsValid reports whether c is one of the known category types.
func (c CategoryType) IsValid() bool {
	return c == CategoryTypeIncome || c == CategoryTypeExpense
}

// Category represents a named bucket transactions are filed under.
type Category struct {
	Name string
	Type CategoryType
	ID   int64
}

// DefaultCategories is the seed set written on every initialization.
// Order matters: it determines the ids a fresh store assigns. Only a fresh
// store gets ids 1..7; each later seeding burns seven ids, so categories
// added after a reopen do not continue from 8.
var DefaultCategories = []Category{
	{Name: "Salary", Type: CategoryTypeIncome},
	{Name: "Food", Type: CategoryTypeExpense},
	{Name: "Transport", Type: CategoryTypeExpense},
	{Name: "Utilities", Type: CategoryTypeExpense},
	{Name: "Entertainment", Type: CategoryTypeExpense},
	{Name: "Shopping", Type: CategoryTypeExpense},
	{Name: "Healthcare", Type: CategoryTypeExpense},
}
