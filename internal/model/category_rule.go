package model

// AmountCondition is the comparison a CategoryRule applies to an amount.
type AmountCondition string

// Amount condition constants.
const (
	AmountAny          AmountCondition = "any"
	AmountLessThan     AmountCondition = "lt"
	AmountLessEqual    AmountCondition = "le"
	AmountEqual        AmountCondition = "eq"
	AmountGreaterEqual AmountCondition = "ge"
	AmountGreaterThan  AmountCondition = "gt"
	AmountRange        AmountCondition = "range"
)

// CategoryRule files matching transactions under Category. Rules are read
// from configuration and applied to imported statement rows.
type CategoryRule struct {
	AmountValue        *float64        `mapstructure:"amount_value"`
	AmountMin          *float64        `mapstructure:"amount_min"`
	AmountMax          *float64        `mapstructure:"amount_max"`
	Type               TransactionType `mapstructure:"type"`
	Name               string          `mapstructure:"name"`
	DescriptionPattern string          `mapstructure:"pattern"`
	AmountCondition    AmountCondition `mapstructure:"amount_condition"`
	Category           string          `mapstructure:"category"`
	Priority           int             `mapstructure:"priority"`
	IsRegex            bool            `mapstructure:"regex"`
}
