package models

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewLegIsZeroedAndSized(t *testing.T) {
	leg := NewLeg(catalog.LegSpec{Type: catalog.CallFly, IsBuy: true})
	require.NoError(t, leg.Validate())
	assert.Len(t, leg.Strikes, 3)
	assert.Len(t, leg.Prices, 3)
	for i := range leg.Strikes {
		assert.True(t, leg.Strikes[i].IsZero())
		assert.True(t, leg.Prices[i].IsZero())
	}
}

func TestWithTypePreservesOverlap(t *testing.T) {
	leg := Leg{
		Type:    catalog.CallSpread,
		IsBuy:   true,
		Strikes: []decimal.Decimal{d("3.50"), d("3.75")},
		Prices:  []decimal.Decimal{d("0.12"), d("0.07")},
		Expiry:  "Q25",
	}

	single := leg.WithType(catalog.Call)
	require.NoError(t, single.Validate())
	assert.Equal(t, "3.50", single.Strikes[0].StringFixed(2))
	assert.Equal(t, "0.12", single.Prices[0].StringFixed(2))
	assert.Equal(t, "Q25", single.Expiry)

	fly := leg.WithType(catalog.CallFly)
	require.NoError(t, fly.Validate())
	assert.True(t, fly.Strikes[1].Equal(d("3.75")))
	assert.True(t, fly.Strikes[2].IsZero())
	assert.True(t, fly.Prices[2].IsZero())

	// the original is untouched
	assert.Len(t, leg.Strikes, 2)
	assert.Equal(t, catalog.CallSpread, leg.Type)
}

func TestWithPriceOutOfRange(t *testing.T) {
	leg := NewLeg(catalog.LegSpec{Type: catalog.Put, IsBuy: true})
	_, err := leg.WithPrice(1, d("0.10"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidLeg))

	updated, err := leg.WithPrice(0, d("0.10"))
	require.NoError(t, err)
	assert.True(t, updated.Prices[0].Equal(d("0.10")))
	assert.True(t, leg.Prices[0].IsZero())
}

func TestValidateRejectsShapeMismatch(t *testing.T) {
	leg := Leg{
		Type:    catalog.Straddle,
		Strikes: []decimal.Decimal{d("3.25")},
		Prices:  []decimal.Decimal{d("0.20")},
	}
	err := leg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidLeg))

	unknown := Leg{Type: "seagull"}
	assert.Error(t, unknown.Validate())
}

func TestTradeWithLeg(t *testing.T) {
	trade := Trade{
		StrategyType: catalog.CallOption,
		Leg1:         NewLeg(catalog.LegSpec{Type: catalog.Call, IsBuy: true}),
	}

	_, err := trade.WithLeg(2, NewLeg(catalog.LegSpec{Type: catalog.Put}))
	require.Error(t, err)

	bad := Leg{Type: catalog.Call, Strikes: []decimal.Decimal{d("1")}}
	_, err = trade.WithLeg(1, bad)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidLeg))

	leg, err := trade.Leg1.WithStrike(0, d("5.00"))
	require.NoError(t, err)
	updated, err := trade.WithLeg(1, leg)
	require.NoError(t, err)
	assert.True(t, updated.Leg1.Strikes[0].Equal(d("5")))
	assert.True(t, trade.Leg1.Strikes[0].IsZero())
}

func TestTradeValidateLegPresence(t *testing.T) {
	leg1 := NewLeg(catalog.LegSpec{Type: catalog.Put, IsBuy: true})
	trade := Trade{StrategyType: catalog.FenceName, Leg1: leg1}
	assert.Error(t, trade.Validate())

	leg2 := NewLeg(catalog.LegSpec{Type: catalog.Call})
	trade.Leg2 = &leg2
	assert.NoError(t, trade.Validate())

	trade.StrategyType = "Jade Lizard"
	assert.True(t, apperrors.Is(trade.Validate(), apperrors.ErrUnknownStrategy))
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		ratio string
		want1 string
		want2 string
	}{
		{"1x1", "1", "1"},
		{"1x2", "1", "2"},
		{"1x1.5", "1", "1.5"},
		{"2X3", "2", "3"},
		{"", "1", "1"},
		{"junk", "1", "1"},
		{"0x2", "1", "2"},
		{"3", "3", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.ratio, func(t *testing.T) {
			r1, r2 := ParseRatio(tt.ratio)
			assert.True(t, r1.Equal(d(tt.want1)), "leg1 factor %s", r1)
			assert.True(t, r2.Equal(d(tt.want2)), "leg2 factor %s", r2)
		})
	}
}

func TestSwapRatio(t *testing.T) {
	assert.Equal(t, "2x1", SwapRatio("1x2"))
	assert.Equal(t, "1.5x1", SwapRatio("1x1.5"))
	assert.Equal(t, "1x1", SwapRatio("1x1"))
	assert.Equal(t, "odd", SwapRatio("odd"))
}

func TestCounterpartyValidate(t *testing.T) {
	assert.NoError(t, Counterparty{Name: "ACME", Quantity: 50}.Validate())
	assert.Error(t, Counterparty{Name: " ", Quantity: 50}.Validate())
	assert.Error(t, Counterparty{Name: "ACME", Quantity: 0}.Validate())
}

func TestProperty_WithTypeKeepsStrikePriceShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	types := catalog.OptionTypes()
	typeGen := gen.IntRange(0, len(types)-1)

	properties.Property("retyped legs always satisfy strikes == prices == required count", prop.ForAll(
		func(from, to int, strike float64) bool {
			leg := NewLeg(catalog.LegSpec{Type: types[from], IsBuy: true})
			leg, _ = leg.WithStrike(0, decimal.NewFromFloat(strike))
			retyped := leg.WithType(types[to])
			n := catalog.RequiredStrikeCount(types[to])
			return len(retyped.Strikes) == n &&
				len(retyped.Prices) == n &&
				retyped.Strikes[0].Equal(decimal.NewFromFloat(strike))
		},
		typeGen, typeGen, gen.Float64Range(0.01, 50),
	))

	properties.TestingRun(t)
}
