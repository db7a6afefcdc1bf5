package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
)

// Leg is one side of an options structure.
// len(Strikes) == len(Prices) == catalog.RequiredStrikeCount(Type) holds for
// every Leg produced by this package.
type Leg struct {
	Type       catalog.OptionType `json:"type"`
	IsBuy      bool               `json:"is_buy"`
	Strikes    []decimal.Decimal  `json:"strikes"`
	Prices     []decimal.Decimal  `json:"prices"`
	Expiry     string             `json:"expiry"`
	Underlying decimal.Decimal    `json:"underlying"`
	Delta      int                `json:"delta"`
}

// NewLeg creates a zeroed leg of the given shape.
func NewLeg(spec catalog.LegSpec) Leg {
	n := catalog.RequiredStrikeCount(spec.Type)
	return Leg{
		Type:    spec.Type,
		IsBuy:   spec.IsBuy,
		Strikes: zeros(n),
		Prices:  zeros(n),
	}
}

func zeros(n int) []decimal.Decimal {
	values := make([]decimal.Decimal, n)
	for i := range values {
		values[i] = decimal.Zero
	}
	return values
}

// Resize returns a copy of values with length n, keeping overlapping entries
// by index and padding with zero.
func Resize(values []decimal.Decimal, n int) []decimal.Decimal {
	out := zeros(n)
	copy(out, values)
	return out
}

// Clone returns a deep copy of the leg.
func (l Leg) Clone() Leg {
	c := l
	c.Strikes = append([]decimal.Decimal(nil), l.Strikes...)
	c.Prices = append([]decimal.Decimal(nil), l.Prices...)
	return c
}

// Validate checks the leg type and the strike/price shape.
func (l Leg) Validate() error {
	if !l.Type.Valid() {
		return apperrors.NewLegError("type", 0, fmt.Sprintf("unknown option type %q", l.Type))
	}
	n := catalog.RequiredStrikeCount(l.Type)
	if len(l.Strikes) != n {
		return apperrors.NewLegError("strikes", len(l.Strikes), fmt.Sprintf("%s needs %d strikes", l.Type, n))
	}
	if len(l.Prices) != n {
		return apperrors.NewLegError("prices", len(l.Prices), fmt.Sprintf("%s needs %d prices", l.Type, n))
	}
	return nil
}

// WithType changes the option type, resizing strikes and prices.
func (l Leg) WithType(t catalog.OptionType) Leg {
	c := l.Clone()
	n := catalog.RequiredStrikeCount(t)
	c.Type = t
	c.Strikes = Resize(l.Strikes, n)
	c.Prices = Resize(l.Prices, n)
	return c
}

// WithStrike sets strike i.
func (l Leg) WithStrike(i int, strike decimal.Decimal) (Leg, error) {
	if i < 0 || i >= len(l.Strikes) {
		return Leg{}, apperrors.NewLegError("strikes", i, "index out of range")
	}
	c := l.Clone()
	c.Strikes[i] = strike
	return c, nil
}

// WithPrice sets price i.
func (l Leg) WithPrice(i int, price decimal.Decimal) (Leg, error) {
	if i < 0 || i >= len(l.Prices) {
		return Leg{}, apperrors.NewLegError("prices", i, "index out of range")
	}
	c := l.Clone()
	c.Prices[i] = price
	return c, nil
}

// WithExpiry sets the expiry code.
func (l Leg) WithExpiry(expiry string) Leg {
	c := l.Clone()
	c.Expiry = expiry
	return c
}

// WithUnderlying sets the underlying reference price.
func (l Leg) WithUnderlying(underlying decimal.Decimal) Leg {
	c := l.Clone()
	c.Underlying = underlying
	return c
}

// WithDelta sets the hedge delta.
func (l Leg) WithDelta(delta int) Leg {
	c := l.Clone()
	c.Delta = delta
	return c
}

// WithDirection sets whether the leg is bought.
func (l Leg) WithDirection(isBuy bool) Leg {
	c := l.Clone()
	c.IsBuy = isBuy
	return c
}

// PricesComplete reports whether every price slot has been entered.
func (l Leg) PricesComplete() bool {
	for _, p := range l.Prices {
		if p.IsZero() {
			return false
		}
	}
	return len(l.Prices) > 0
}

// Equal reports whether two legs hold the same values.
func (l Leg) Equal(o Leg) bool {
	if l.Type != o.Type || l.IsBuy != o.IsBuy || l.Expiry != o.Expiry || l.Delta != o.Delta {
		return false
	}
	if !l.Underlying.Equal(o.Underlying) {
		return false
	}
	return decimalsEqual(l.Strikes, o.Strikes) && decimalsEqual(l.Prices, o.Prices)
}

func decimalsEqual(a, b []decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
