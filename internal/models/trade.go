package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
)

// Trade defaults.
const (
	DefaultExchange = "CME"
	DefaultRatio    = "1x1"
	DefaultLots     = 100
)

// Trade is a normalized one- or two-leg options structure.
type Trade struct {
	StrategyType string `json:"strategy_type"`
	Exchange     string `json:"exchange"`
	IsLive       bool   `json:"is_live"`
	Ratio        string `json:"ratio"`
	Lots         int    `json:"lots"`
	Leg1         Leg    `json:"leg1"`
	Leg2         *Leg   `json:"leg2,omitempty"`
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	c := t
	c.Leg1 = t.Leg1.Clone()
	if t.Leg2 != nil {
		leg2 := t.Leg2.Clone()
		c.Leg2 = &leg2
	}
	return c
}

// Legs returns leg1 and, when present, leg2.
func (t Trade) Legs() []Leg {
	if t.Leg2 == nil {
		return []Leg{t.Leg1}
	}
	return []Leg{t.Leg1, *t.Leg2}
}

// WithLeg replaces leg n (1 or 2) with leg.
func (t Trade) WithLeg(n int, leg Leg) (Trade, error) {
	if err := leg.Validate(); err != nil {
		return Trade{}, apperrors.Wrapf(err, "leg %d", n)
	}
	c := t.Clone()
	switch n {
	case 1:
		c.Leg1 = leg.Clone()
	case 2:
		if t.Leg2 == nil {
			return Trade{}, apperrors.NewLegError("", 2, fmt.Sprintf("%s has no second leg", t.StrategyType))
		}
		leg2 := leg.Clone()
		c.Leg2 = &leg2
	default:
		return Trade{}, apperrors.NewLegError("", n, "leg must be 1 or 2")
	}
	return c, nil
}

// Leg returns leg n (1 or 2).
func (t Trade) Leg(n int) (Leg, error) {
	switch {
	case n == 1:
		return t.Leg1, nil
	case n == 2 && t.Leg2 != nil:
		return *t.Leg2, nil
	}
	return Leg{}, apperrors.NewLegError("", n, fmt.Sprintf("%s has no leg %d", t.StrategyType, n))
}

// Validate checks both legs and that leg2 presence matches the catalog.
func (t Trade) Validate() error {
	def, err := catalog.LegSpecs(t.StrategyType)
	if err != nil {
		return err
	}
	if def.HasLeg2() != (t.Leg2 != nil) {
		return apperrors.NewLegError("", 2, fmt.Sprintf("leg2 presence does not match %s", t.StrategyType))
	}
	for i, leg := range t.Legs() {
		if err := leg.Validate(); err != nil {
			return apperrors.Wrapf(err, "leg %d", i+1)
		}
	}
	return nil
}

// PricesComplete reports whether every price on every leg is set.
func (t Trade) PricesComplete() bool {
	for _, leg := range t.Legs() {
		if !leg.PricesComplete() {
			return false
		}
	}
	return true
}

// Equal reports whether two trades hold the same values.
func (t Trade) Equal(o Trade) bool {
	if t.StrategyType != o.StrategyType || t.Exchange != o.Exchange || t.IsLive != o.IsLive ||
		t.Ratio != o.Ratio || t.Lots != o.Lots {
		return false
	}
	if !t.Leg1.Equal(o.Leg1) {
		return false
	}
	if (t.Leg2 == nil) != (o.Leg2 == nil) {
		return false
	}
	return t.Leg2 == nil || t.Leg2.Equal(*o.Leg2)
}

// RatioFactors returns the leg1 and leg2 multipliers of the trade ratio.
func (t Trade) RatioFactors() (decimal.Decimal, decimal.Decimal) {
	return ParseRatio(t.Ratio)
}

// ParseRatio splits an "AxB" ratio into its two factors. A missing, malformed
// or non-positive factor is 1.
func ParseRatio(ratio string) (decimal.Decimal, decimal.Decimal) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(ratio)), "x")
	factor := func(i int) decimal.Decimal {
		if i >= len(parts) {
			return decimal.NewFromInt(1)
		}
		d, err := decimal.NewFromString(parts[i])
		if err != nil || !d.IsPositive() {
			return decimal.NewFromInt(1)
		}
		return d
	}
	return factor(0), factor(1)
}

// SwapRatio turns "AxB" into "BxA".
func SwapRatio(ratio string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(ratio)), "x")
	if len(parts) != 2 {
		return ratio
	}
	return parts[1] + "x" + parts[0]
}
