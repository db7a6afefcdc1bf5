// Package trading turns parsed notations into normalized trades and edits them
// as whole values.
package trading

import (
	"strings"

	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
)

// legData is the per-leg information carried by a notation.
type legData struct {
	strikes    []decimal.Decimal
	expiry     string
	underlying decimal.Decimal
	delta      int
}

// Builder constructs trades, stamping its exchange on any trade whose
// notation names none.
type Builder struct {
	exchange string
}

// NewBuilder returns a Builder for the given default exchange. A blank
// exchange falls back to models.DefaultExchange.
func NewBuilder(exchange string) Builder {
	return Builder{exchange: valueOr(strings.TrimSpace(exchange), models.DefaultExchange)}
}

// Exchange returns the exchange used when a notation names none.
func (b Builder) Exchange() string {
	return valueOr(b.exchange, models.DefaultExchange)
}

// Build constructs a trade with the built-in default exchange.
func Build(p models.ParsedNotation) (models.Trade, error) {
	return Builder{}.Build(p)
}

// Empty returns a zeroed trade on the built-in default exchange.
func Empty(strategy string) (models.Trade, error) {
	return Builder{}.Empty(strategy)
}

// Build constructs a Trade from a parsed notation. It fails with
// ErrUnknownStrategy when the strategy is not in the catalog.
func (b Builder) Build(p models.ParsedNotation) (models.Trade, error) {
	def, err := catalog.LegSpecs(p.StrategyType)
	if err != nil {
		return models.Trade{}, err
	}

	first := legData{strikes: p.FlatStrikes, expiry: p.Expiry, underlying: p.Underlying, delta: p.Delta}
	second := legData{strikes: p.FlatStrikes2, expiry: p.Expiry2, underlying: p.Underlying2, delta: p.Delta2}
	if p.LegsSwapped {
		first, second = second, first
	}

	n1 := catalog.RequiredStrikeCount(def.Leg1.Type)
	n2 := 0
	if def.Leg2 != nil {
		n2 = catalog.RequiredStrikeCount(def.Leg2.Type)
	}

	var strikes1, strikes2 []decimal.Decimal
	if p.IsVersus && def.Leg2 != nil {
		strikes1 = models.Resize(first.strikes, n1)
		strikes2 = models.Resize(second.strikes, n2)
	} else {
		strikes1, strikes2 = Distribute(first.strikes, n1, n2)
	}

	trade := models.Trade{
		StrategyType: def.Name,
		Exchange:     valueOr(p.Exchange, b.Exchange()),
		IsLive:       p.IsLive,
		Ratio:        valueOr(p.Ratio, models.DefaultRatio),
		Lots:         p.Lots,
		Leg1:         newLeg(def.Leg1, strikes1, first),
	}
	if trade.Lots <= 0 {
		trade.Lots = models.DefaultLots
	}
	if def.Leg2 != nil {
		leg2 := newLeg(*def.Leg2, strikes2, second)
		trade.Leg2 = &leg2
	}
	return trade, nil
}

func newLeg(spec catalog.LegSpec, strikes []decimal.Decimal, data legData) models.Leg {
	leg := models.NewLeg(spec)
	leg.Strikes = models.Resize(strikes, len(leg.Strikes))
	leg.Expiry = data.expiry
	leg.Underlying = data.underlying
	leg.Delta = data.delta
	return leg
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Empty returns a zeroed trade of the given strategy, ready for manual entry.
func (b Builder) Empty(strategy string) (models.Trade, error) {
	def, err := catalog.LegSpecs(strategy)
	if err != nil {
		return models.Trade{}, err
	}
	trade := models.Trade{
		StrategyType: def.Name,
		Exchange:     b.Exchange(),
		Ratio:        models.DefaultRatio,
		Lots:         models.DefaultLots,
		Leg1:         models.NewLeg(def.Leg1),
	}
	if def.Leg2 != nil {
		leg2 := models.NewLeg(*def.Leg2)
		trade.Leg2 = &leg2
	}
	return trade, nil
}

// Retype rebuilds a trade's legs for a new strategy. Strikes and prices are
// kept by index up to the new strike count. A leg2 that did not exist before
// starts zeroed with leg1's expiry, underlying and delta. The input trade is
// not modified.
func Retype(trade models.Trade, strategy string) (models.Trade, error) {
	def, err := catalog.LegSpecs(strategy)
	if err != nil {
		return models.Trade{}, err
	}

	out := trade.Clone()
	out.StrategyType = def.Name
	out.Leg1 = reshape(def.Leg1, &trade.Leg1, trade.Leg1)
	out.Leg2 = nil
	if def.Leg2 != nil {
		leg2 := reshape(*def.Leg2, trade.Leg2, trade.Leg1)
		out.Leg2 = &leg2
	}
	return out, nil
}

func reshape(spec catalog.LegSpec, old *models.Leg, seed models.Leg) models.Leg {
	leg := models.NewLeg(spec)
	if old != nil {
		leg.Strikes = models.Resize(old.Strikes, len(leg.Strikes))
		leg.Prices = models.Resize(old.Prices, len(leg.Prices))
		seed = *old
	}
	leg.Expiry = seed.Expiry
	leg.Underlying = seed.Underlying
	leg.Delta = seed.Delta
	return leg
}

// SwapLegs exchanges every detail of leg1 and leg2, flips both directions and
// reverses the ratio. Both legs must exist and every price must be entered.
func SwapLegs(trade models.Trade) (models.Trade, error) {
	if trade.Leg2 == nil {
		return models.Trade{}, apperrors.Wrapf(apperrors.ErrSwapNotReady, "%s has a single leg", trade.StrategyType)
	}
	if !trade.PricesComplete() {
		return models.Trade{}, apperrors.Wrap(apperrors.ErrSwapNotReady, "enter every price before swapping")
	}

	out := trade.Clone()
	leg1 := trade.Leg2.WithDirection(!trade.Leg2.IsBuy)
	leg2 := trade.Leg1.WithDirection(!trade.Leg1.IsBuy)
	out.Leg1 = leg1
	out.Leg2 = &leg2
	out.Ratio = models.SwapRatio(trade.Ratio)
	return out, nil
}
