package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

var _ Categorizer = (*Matcher)(nil)

// Matcher evaluates transactions against category rules.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []Rule
}

// NewMatcher validates and compiles rules. Rules keep their configured order
// among equal priorities.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{
		rules:         make([]Rule, len(rules)),
		compiledRegex: make(map[int]*regexp.Regexp),
	}
	copy(m.rules, rules)

	for i, rule := range m.rules {
		if err := ValidateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, ruleLabel(rule), err)
		}
		if rule.AmountCondition == "" {
			m.rules[i].AmountCondition = model.AmountAny
		}
		if rule.IsRegex {
			// Case-insensitive like plain patterns.
			m.compiledRegex[i] = regexp.MustCompile("(?i)" + rule.DescriptionPattern)
		}
	}

	return m, nil
}

// Match returns every rule the transaction satisfies, highest priority first.
func (m *Matcher) Match(txn model.Transaction) []Rule {
	type indexed struct {
		rule  Rule
		index int
	}

	var matches []indexed
	for i, rule := range m.rules {
		if m.matchesRule(i, txn, rule) {
			matches = append(matches, indexed{rule: rule, index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rule.Priority > matches[j].rule.Priority
	})

	rules := make([]Rule, len(matches))
	for i, match := range matches {
		rules[i] = match.rule
	}
	return rules
}

// Categorize returns the category of the highest priority matching rule.
func (m *Matcher) Categorize(txn model.Transaction) (string, bool) {
	matches := m.Match(txn)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Category, true
}

// Apply recategorizes txns in place and reports how many changed.
func (m *Matcher) Apply(txns []model.Transaction) int {
	changed := 0
	for i := range txns {
		if category, ok := m.Categorize(txns[i]); ok && category != txns[i].Category {
			txns[i].Category = category
			changed++
		}
	}
	return changed
}

func (m *Matcher) matchesRule(index int, txn model.Transaction, rule Rule) bool {
	if rule.Type != "" && txn.Type != rule.Type {
		return false
	}
	return m.matchesDescription(index, txn, rule) && matchesAmount(txn.Amount, rule)
}

func (m *Matcher) matchesDescription(index int, txn model.Transaction, rule Rule) bool {
	if rule.DescriptionPattern == "" {
		return true
	}

	if rule.IsRegex {
		return m.compiledRegex[index].MatchString(txn.Description)
	}

	// Plain patterns match as a case-insensitive substring.
	return strings.Contains(strings.ToLower(txn.Description), strings.ToLower(rule.DescriptionPattern))
}

func matchesAmount(amount float64, rule Rule) bool {
	switch rule.AmountCondition {
	case model.AmountAny, "":
		return true
	case model.AmountLessThan:
		return rule.AmountValue != nil && amount < *rule.AmountValue
	case model.AmountLessEqual:
		return rule.AmountValue != nil && amount <= *rule.AmountValue
	case model.AmountEqual:
		return rule.AmountValue != nil && amount == *rule.AmountValue
	case model.AmountGreaterEqual:
		return rule.AmountValue != nil && amount >= *rule.AmountValue
	case model.AmountGreaterThan:
		return rule.AmountValue != nil && amount > *rule.AmountValue
	case model.AmountRange:
		if rule.AmountMin != nil && amount < *rule.AmountMin {
			return false
		}
		if rule.AmountMax != nil && amount > *rule.AmountMax {
			return false
		}
		return true
	}

	return false
}

func ruleLabel(rule Rule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return rule.DescriptionPattern
}
