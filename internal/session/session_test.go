package session

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-confirmer/internal/catalog"
	"trade-confirmer/internal/confirm"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
)

func setPrice(idx int, value string) func(models.Leg) (models.Leg, error) {
	return func(l models.Leg) (models.Leg, error) {
		return l.WithPrice(idx, decimal.RequireFromString(value))
	}
}

func TestParseFailureKeepsState(t *testing.T) {
	s := New(nil)
	_, err := s.Parse("U25 2.75/4.25 fence x3.31 27d")
	require.NoError(t, err)
	before, _ := s.Trade()

	_, err = s.Parse("no expiry here 3.25")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMalformedInput))

	after, ok := s.Trade()
	require.True(t, ok)
	assert.True(t, before.Equal(after))
	parsed, _ := s.Parsed()
	assert.Equal(t, "U25 2.75/4.25 fence x3.31 27d", parsed.Raw)
}

func TestTradesUseGeneratorExchange(t *testing.T) {
	s := New(confirm.NewGenerator(confirm.Options{Exchange: "ICE"}))

	trade, err := s.Parse("Z25 5.00c x3.30 LIVE")
	require.NoError(t, err)
	assert.Equal(t, "ICE", trade.Exchange)

	trade, err = s.BuildStructure(catalog.FenceName)
	require.NoError(t, err)
	assert.Equal(t, "ICE", trade.Exchange)
}

func TestEditsRequireTrade(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.SetLive(true), apperrors.ErrNoTrade)
	assert.ErrorIs(t, s.SwapLegs(), apperrors.ErrNoTrade)
	_, err := s.Generate()
	assert.ErrorIs(t, err, apperrors.ErrNoTrade)
}

func TestRetypeWithoutTradeStartsEmpty(t *testing.T) {
	s := New(nil)
	trade, err := s.Retype(catalog.IronCondor)
	require.NoError(t, err)
	assert.Equal(t, catalog.IronCondor, trade.StrategyType)
	require.NotNil(t, trade.Leg2)
	_, ok := s.Parsed()
	assert.False(t, ok)
}

func TestUpdateLegAndGenerate(t *testing.T) {
	s := New(nil)
	_, err := s.Parse("Z25 5.00c LIVE")
	require.NoError(t, err)

	require.NoError(t, s.UpdateLeg(1, setPrice(0, "0.29")))
	require.NoError(t, s.AddBuyer(models.Counterparty{Name: "acme", Quantity: 25}))

	out, err := s.Generate()
	require.NoError(t, err)
	assert.Equal(t, "BUYER (25X): ACME\nTo Confirm: CME Cleared\nBuys 25 Z25 5.00 call for 0.29", out)
}

func TestSetLegRejectsBadShape(t *testing.T) {
	s := New(nil)
	_, err := s.Parse("Q25 3.65/4.00 cs LIVE")
	require.NoError(t, err)
	before, _ := s.Trade()

	bad := models.Leg{Type: catalog.CallSpread, Strikes: []decimal.Decimal{decimal.NewFromInt(1)}}
	err = s.SetLeg(1, bad)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidLeg))

	after, _ := s.Trade()
	assert.True(t, before.Equal(after))

	err = s.SetLeg(2, before.Leg1)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidLeg))
}

func TestSwapAndSolve(t *testing.T) {
	s := New(nil)
	_, err := s.Parse("Q25 3.50/3.75 1x2 cs vs 3.00p x3.40 25d")
	require.NoError(t, err)

	require.NoError(t, s.UpdateLeg(1, setPrice(0, "0.10")))
	require.NoError(t, s.UpdateLeg(1, setPrice(1, "0.05")))
	require.NoError(t, s.UpdateLeg(2, setPrice(0, "0.08")))
	assert.True(t, s.Snapshot().NeedsSwap)

	require.NoError(t, s.SwapLegs())
	trade, _ := s.Trade()
	assert.Equal(t, catalog.Put, trade.Leg1.Type)
	assert.Equal(t, "2x1", trade.Ratio)
	assert.False(t, s.Snapshot().NeedsSwap)

	_, err = s.BuildStructure(catalog.CallSpreadName)
	require.NoError(t, err)
	require.NoError(t, s.UpdateLeg(1, setPrice(0, "0.10")))
	require.NoError(t, s.SolvePrice(decimal.RequireFromString("0.047")))
	trade, _ = s.Trade()
	assert.Equal(t, "0.053", trade.Leg1.Prices[1].String())
}

func TestSetters(t *testing.T) {
	s := New(nil)
	_, err := s.Parse("U25 2.75/4.25 fence x3.31 27d")
	require.NoError(t, err)

	require.NoError(t, s.SetRatio("1x3"))
	require.NoError(t, s.SetExchange("ICE"))
	require.NoError(t, s.SetLive(true))
	require.NoError(t, s.SetLots(50))
	assert.Error(t, s.SetLots(0))
	assert.Error(t, s.SetRatio(""))

	trade, _ := s.Trade()
	assert.Equal(t, "1x3", trade.Ratio)
	assert.Equal(t, "ICE", trade.Exchange)
	assert.True(t, trade.IsLive)
	assert.Equal(t, 50, trade.Lots)
}

func TestCounterparties(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddBuyer(models.Counterparty{Name: "a", Quantity: 10}))
	require.NoError(t, s.AddBuyer(models.Counterparty{Name: "b", Quantity: 20}))
	require.NoError(t, s.AddSeller(models.Counterparty{Name: "c", Quantity: 30}))

	err := s.AddSeller(models.Counterparty{Name: "", Quantity: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))

	require.NoError(t, s.RemoveBuyer(0))
	assert.Equal(t, []models.Counterparty{{Name: "b", Quantity: 20}}, s.Buyers())
	assert.Error(t, s.RemoveSeller(3))

	// returned slices are copies
	buyers := s.Buyers()
	buyers[0].Name = "changed"
	assert.Equal(t, "b", s.Buyers()[0].Name)

	s.Clear()
	assert.Empty(t, s.Buyers())
	assert.Empty(t, s.Sellers())
	_, ok := s.Trade()
	assert.False(t, ok)
}
