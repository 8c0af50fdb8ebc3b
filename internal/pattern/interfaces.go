// Package pattern assigns categories to transactions using configured rules.
package pattern

import (
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Categorizer picks a category for a transaction.
type Categorizer interface {
	// Categorize returns the category of the best matching rule, if any.
	Categorize(txn model.Transaction) (string, bool)
}

// Rule is an alias to the model.CategoryRule type for convenience.
type Rule = model.CategoryRule
