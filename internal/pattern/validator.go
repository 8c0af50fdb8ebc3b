package pattern

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// ErrInvalidRule is wrapped by every rule validation failure.
var ErrInvalidRule = errors.New("invalid category rule")

// ValidateRule checks that a rule can be evaluated.
func ValidateRule(rule Rule) error {
	if rule.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRule)
	}

	if rule.Type != "" && !rule.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRule, rule.Type)
	}

	if rule.IsRegex {
		if rule.DescriptionPattern == "" {
			return fmt.Errorf("%w: regex rules need a pattern", ErrInvalidRule)
		}
		if _, err := regexp.Compile("(?i)" + rule.DescriptionPattern); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRule, err)
		}
	}

	switch rule.AmountCondition {
	case "", model.AmountAny:
	case model.AmountLessThan, model.AmountLessEqual, model.AmountEqual,
		model.AmountGreaterEqual, model.AmountGreaterThan:
		if rule.AmountValue == nil {
			return fmt.Errorf("%w: %s needs amount_value", ErrInvalidRule, rule.AmountCondition)
		}
	case model.AmountRange:
		if rule.AmountMin == nil && rule.AmountMax == nil {
			return fmt.Errorf("%w: range needs amount_min or amount_max", ErrInvalidRule)
		}
		if rule.AmountMin != nil && rule.AmountMax != nil && *rule.AmountMin > *rule.AmountMax {
			return fmt.Errorf("%w: amount_min exceeds amount_max", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown amount condition %q", ErrInvalidRule, rule.AmountCondition)
	}

	return nil
}

// ValidateCategoryType reports a mismatch between a transaction's type and
// the type of the category it is filed under.
func ValidateCategoryType(txn model.Transaction, category model.Category) error {
	if string(txn.Type) != string(category.Type) {
		return fmt.Errorf("category %q has type %s but transaction is %s",
			category.Name, category.Type, txn.Type)
	}
	return nil
}
