package models

import "github.com/shopspring/decimal"

// ParsedNotation is the flat record extracted from a trade notation string.
type ParsedNotation struct {
	Raw          string            `json:"raw"`
	Exchange     string            `json:"exchange"`
	Expiry       string            `json:"expiry"`
	Expiry2      string            `json:"expiry2"`
	FlatStrikes  []decimal.Decimal `json:"strikes"`
	FlatStrikes2 []decimal.Decimal `json:"strikes2"`
	Underlying   decimal.Decimal   `json:"underlying"`
	Underlying2  decimal.Decimal   `json:"underlying2"`
	Delta        int               `json:"delta"`
	Delta2       int               `json:"delta2"`
	StrategyType string            `json:"strategy_type"`
	IsLive       bool              `json:"is_live"`
	IsVersus     bool              `json:"is_versus"`
	Ratio        string            `json:"ratio"`
	Lots         int               `json:"lots"`

	// LegsSwapped is set when the right-hand side of a versus notation
	// carries the strategy's first leg.
	LegsSwapped bool `json:"legs_swapped,omitempty"`

	// Price is the quoted structure price, when the notation carries one.
	Price *decimal.Decimal `json:"price,omitempty"`
}
