package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/pattern"
)

// LoadCategoryRules reads the import.rules list and compiles it. No rules
// configured yields a matcher that never matches.
//
// Example config:
//
//	import:
//	  rules:
//	    - name: groceries
//	      pattern: whole foods
//	      category: Food
//	    - pattern: "^(uber|lyft)"
//	      regex: true
//	      category: Transport
func LoadCategoryRules() (*pattern.Matcher, error) {
	var rules []pattern.Rule
	if err := viper.UnmarshalKey("import.rules", &rules); err != nil {
		return nil, fmt.Errorf("failed to read import rules: %w", err)
	}

	matcher, err := pattern.NewMatcher(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid import rules: %w", err)
	}
	return matcher, nil
}
