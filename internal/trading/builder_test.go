package trading

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/notation"
)

func mustBuild(t *testing.T, raw string) models.Trade {
	t.Helper()
	p, err := notation.Parse(raw)
	require.NoError(t, err)
	trade, err := Build(p)
	require.NoError(t, err)
	return trade
}

func TestBuildFence(t *testing.T) {
	trade := mustBuild(t, "U25 2.75/4.25 fence x3.31 27d")

	assert.Equal(t, catalog.FenceName, trade.StrategyType)
	assert.Equal(t, "CME", trade.Exchange)
	assert.Equal(t, "1x1", trade.Ratio)
	assert.Equal(t, 100, trade.Lots)
	assert.False(t, trade.IsLive)

	assert.Equal(t, catalog.Put, trade.Leg1.Type)
	assert.True(t, trade.Leg1.IsBuy)
	assert.Equal(t, []string{"2.75"}, strs(trade.Leg1.Strikes))
	assert.Equal(t, "U25", trade.Leg1.Expiry)
	assert.Equal(t, 27, trade.Leg1.Delta)

	require.NotNil(t, trade.Leg2)
	assert.Equal(t, catalog.Call, trade.Leg2.Type)
	assert.False(t, trade.Leg2.IsBuy)
	assert.Equal(t, []string{"4.25"}, strs(trade.Leg2.Strikes))
	assert.Equal(t, "U25", trade.Leg2.Expiry)
	assert.True(t, trade.Leg2.Underlying.Equal(decimal.RequireFromString("3.31")))
	assert.Equal(t, 27, trade.Leg2.Delta)

	require.NoError(t, trade.Validate())
}

func TestBuildShapes(t *testing.T) {
	tests := []struct {
		raw      string
		leg1     []string
		leg2     []string
		hasLeg2  bool
		strategy string
	}{
		{"Z25 5.00c LIVE", []string{"5"}, nil, false, catalog.CallOption},
		{"Q25 3.65/4.00 cs LIVE", []string{"3.65", "4"}, nil, false, catalog.CallSpreadName},
		{"JV26 3.50/3.25/3.15 put fly LIVE", []string{"3.5", "3.25", "3.15"}, nil, false, catalog.PutFlyName},
		{"Z25 3.25 strad LIVE", []string{"3.25", "0"}, nil, false, catalog.StraddleName},
		{"H26 2.50/3.00/4.50/5.00 iron condor", []string{"2.5", "3"}, []string{"4.5", "5"}, true, catalog.IronCondor},
		{"V25 3.25/3.75/4.25 iron fly", []string{"3.25", "3.75"}, []string{"3.75", "4.25"}, true, catalog.IronButterfly},
		{"H26 3.75 conversion x3.75", []string{"3.75"}, []string{"3.75"}, true, catalog.ConversionReversal},
		{"J26 3.75/4.00cs vs. 3.00/2.75ps x3.56 12d", []string{"3", "2.75"}, []string{"3.75", "4"}, true, catalog.IronCondor},
		{"V25 3.50/4.00cs vs 2.75p x3.20 25d/20d", []string{"3.5", "4"}, []string{"2.75"}, true, catalog.ThreeWayCSvP},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			trade := mustBuild(t, tt.raw)
			assert.Equal(t, tt.strategy, trade.StrategyType)
			assert.Equal(t, tt.leg1, strs(trade.Leg1.Strikes))
			assert.Equal(t, tt.hasLeg2, trade.Leg2 != nil)
			if tt.hasLeg2 {
				assert.Equal(t, tt.leg2, strs(trade.Leg2.Strikes))
			}
			require.NoError(t, trade.Validate())
		})
	}
}

func TestBuildVersusKeepsPerSideFields(t *testing.T) {
	trade := mustBuild(t, "Z25 3.25 strad x3.30 vs. H26 3.50 strad x3.55 40d/45d")
	require.NotNil(t, trade.Leg2)

	assert.Equal(t, "Z25", trade.Leg1.Expiry)
	assert.Equal(t, "H26", trade.Leg2.Expiry)
	assert.Equal(t, "3.3", trade.Leg1.Underlying.String())
	assert.Equal(t, "3.55", trade.Leg2.Underlying.String())
	assert.Equal(t, 40, trade.Leg1.Delta)
	assert.Equal(t, 45, trade.Leg2.Delta)
	assert.Equal(t, []string{"3.25", "0"}, strs(trade.Leg1.Strikes))
	assert.Equal(t, []string{"3.5", "0"}, strs(trade.Leg2.Strikes))
}

func TestBuildSwappedVersusMovesExpiries(t *testing.T) {
	trade := mustBuild(t, "Z25 3.00p x3.40 vs H26 4.00c x3.60 30d/35d")
	require.Equal(t, catalog.ConversionReversal, trade.StrategyType)
	require.NotNil(t, trade.Leg2)

	assert.Equal(t, catalog.Call, trade.Leg1.Type)
	assert.Equal(t, []string{"4"}, strs(trade.Leg1.Strikes))
	assert.Equal(t, "H26", trade.Leg1.Expiry)
	assert.Equal(t, 35, trade.Leg1.Delta)
	assert.Equal(t, catalog.Put, trade.Leg2.Type)
	assert.Equal(t, []string{"3"}, strs(trade.Leg2.Strikes))
	assert.Equal(t, "Z25", trade.Leg2.Expiry)
}

func TestBuildCarriesRatioLotsExchange(t *testing.T) {
	trade := mustBuild(t, "Brent U25 3.75/4.00 1x2 cs x3.70 20d (25x)")
	assert.Equal(t, "Brent", trade.Exchange)
	assert.Equal(t, "1x2", trade.Ratio)
	assert.Equal(t, 25, trade.Lots)
}

func TestBuilderDefaultExchange(t *testing.T) {
	tests := []struct {
		name     string
		exchange string
		raw      string
		want     string
	}{
		{"configured exchange fills a blank", "ICE", "Z25 5.00c x3.30", "ICE"},
		{"notation exchange wins", "ICE", "Brent Z25 5.00c x3.30", "Brent"},
		{"blank falls back to CME", "  ", "Z25 5.00c x3.30", "CME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := notation.Parse(tt.raw)
			require.NoError(t, err)
			trade, err := NewBuilder(tt.exchange).Build(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, trade.Exchange)
		})
	}

	empty, err := NewBuilder("ICE").Empty(catalog.StraddleName)
	require.NoError(t, err)
	assert.Equal(t, "ICE", empty.Exchange)
}

func TestBuildUnknownStrategy(t *testing.T) {
	_, err := Build(models.ParsedNotation{StrategyType: "Jade Lizard"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStrategy))
}

func TestEmpty(t *testing.T) {
	trade, err := Empty(catalog.IronCondor)
	require.NoError(t, err)
	require.NoError(t, trade.Validate())
	assert.Equal(t, "CME", trade.Exchange)
	assert.Equal(t, []string{"0", "0"}, strs(trade.Leg1.Strikes))
	require.NotNil(t, trade.Leg2)
	assert.False(t, trade.Leg2.IsBuy)

	_, err = Empty("Jade Lizard")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStrategy))
}

func TestRetypeCallSpreadToStraddle(t *testing.T) {
	trade := mustBuild(t, "Q25 3.65/4.00 cs x3.50 20d")
	leg1, err := trade.Leg1.WithPrice(0, decimal.RequireFromString("0.12"))
	require.NoError(t, err)
	trade, err = trade.WithLeg(1, leg1)
	require.NoError(t, err)

	straddle, err := Retype(trade, catalog.StraddleName)
	require.NoError(t, err)
	assert.Equal(t, catalog.Straddle, straddle.Leg1.Type)
	assert.Equal(t, "3.65", straddle.Leg1.Strikes[0].String())
	assert.Equal(t, "0.12", straddle.Leg1.Prices[0].String())
	assert.Equal(t, "Q25", straddle.Leg1.Expiry)
	assert.Nil(t, straddle.Leg2)

	spread, err := Retype(trade, catalog.StraddleSpread)
	require.NoError(t, err)
	assert.Equal(t, "3.65", spread.Leg1.Strikes[0].String())
	assert.Equal(t, "0.12", spread.Leg1.Prices[0].String())
	require.NotNil(t, spread.Leg2)
	assert.Equal(t, catalog.Straddle, spread.Leg2.Type)
	assert.Equal(t, []string{"0", "0"}, strs(spread.Leg2.Strikes))
	assert.Equal(t, []string{"0", "0"}, strs(spread.Leg2.Prices))
	assert.Equal(t, "Q25", spread.Leg2.Expiry)
	assert.Equal(t, 20, spread.Leg2.Delta)

	// the input trade is unchanged
	assert.Equal(t, catalog.CallSpreadName, trade.StrategyType)
	assert.Equal(t, catalog.CallSpread, trade.Leg1.Type)
}

func TestRetypeDropsLeg2(t *testing.T) {
	trade := mustBuild(t, "U25 2.75/4.25 fence x3.31 27d")
	out, err := Retype(trade, catalog.PutOption)
	require.NoError(t, err)
	assert.Nil(t, out.Leg2)
	assert.Equal(t, []string{"2.75"}, strs(out.Leg1.Strikes))
	assert.NotNil(t, trade.Leg2)
}

func TestRetypeUnknown(t *testing.T) {
	trade := mustBuild(t, "Z25 5.00c LIVE")
	_, err := Retype(trade, "Jade Lizard")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStrategy))
}

func TestSwapLegs(t *testing.T) {
	trade := mustBuild(t, "Q25 3.50/3.75 1x2 cs vs 3.00p x3.40 25d")
	require.Equal(t, catalog.ThreeWayCSvP, trade.StrategyType)

	_, err := SwapLegs(trade)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSwapNotReady))

	trade = priced(t, trade, "0.10", "0.05", "0.08")
	swapped, err := SwapLegs(trade)
	require.NoError(t, err)

	assert.Equal(t, catalog.Put, swapped.Leg1.Type)
	assert.True(t, swapped.Leg1.IsBuy)
	assert.Equal(t, catalog.CallSpread, swapped.Leg2.Type)
	assert.False(t, swapped.Leg2.IsBuy)
	assert.Equal(t, "2x1", swapped.Ratio)

	back, err := SwapLegs(swapped)
	require.NoError(t, err)
	assert.True(t, back.Equal(trade))
}

func TestSwapLegsSingleLeg(t *testing.T) {
	trade := mustBuild(t, "Z25 5.00c LIVE")
	_, err := SwapLegs(trade)
	assert.True(t, apperrors.Is(err, apperrors.ErrSwapNotReady))
}

// priced fills prices leg by leg in order.
func priced(t *testing.T, trade models.Trade, values ...string) models.Trade {
	t.Helper()
	i := 0
	for n := 1; n <= len(trade.Legs()); n++ {
		leg, err := trade.Leg(n)
		require.NoError(t, err)
		for idx := range leg.Prices {
			if i >= len(values) {
				break
			}
			leg, err = leg.WithPrice(idx, decimal.RequireFromString(values[i]))
			require.NoError(t, err)
			i++
		}
		trade, err = trade.WithLeg(n, leg)
		require.NoError(t, err)
	}
	return trade
}

// Property: building then retyping to any strategy keeps the leg-presence and
// strike/price lengths.
func TestProperty_RetypeKeepsLegShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	names := catalog.Names()
	samples := []string{
		"Z25 5.00c LIVE",
		"U25 2.75/4.25 fence x3.31 27d",
		"V25 3.25/3.75/4.25 iron fly",
		"H26 2.50/3.00/4.50/5.00 iron condor",
		"J26 3.75/4.00cs vs. 3.00/2.75ps x3.56 12d",
		"JV26 3.50/3.25/3.15 put fly LIVE",
	}

	properties.Property("retype keeps every leg well-shaped", prop.ForAll(
		func(sample, from, to int) bool {
			p, err := notation.Parse(samples[sample])
			if err != nil {
				return false
			}
			trade, err := Build(p)
			if err != nil {
				return false
			}
			trade, err = Retype(trade, names[from])
			if err != nil {
				return false
			}
			trade, err = Retype(trade, names[to])
			if err != nil {
				return false
			}
			def, _ := catalog.LegSpecs(names[to])
			if def.HasLeg2() != (trade.Leg2 != nil) {
				return false
			}
			return trade.Validate() == nil
		},
		gen.IntRange(0, len(samples)-1),
		gen.IntRange(0, len(names)-1),
		gen.IntRange(0, len(names)-1),
	))

	properties.Property("build matches the catalog leg shape", prop.ForAll(
		func(sample, strategy int) bool {
			p, err := notation.Parse(samples[sample])
			if err != nil {
				return false
			}
			p.StrategyType = names[strategy]
			trade, err := Build(p)
			if err != nil {
				return false
			}
			def, _ := catalog.LegSpecs(names[strategy])
			return def.HasLeg2() == (trade.Leg2 != nil) && trade.Validate() == nil
		},
		gen.IntRange(0, len(samples)-1),
		gen.IntRange(0, len(names)-1),
	))

	properties.TestingRun(t)
}
