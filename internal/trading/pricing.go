package trading

import (
	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
)

// weights returns the signed per-strike premium weights of a leg type.
func weights(t catalog.OptionType) []int64 {
	switch t {
	case catalog.Call, catalog.Put:
		return []int64{1}
	case catalog.CallSpread, catalog.PutSpread, catalog.Fence:
		return []int64{1, -1}
	case catalog.Straddle, catalog.Strangle:
		return []int64{1, 1}
	case catalog.CallFly, catalog.PutFly:
		return []int64{1, -2, 1}
	case catalog.CallTree, catalog.PutTree:
		return []int64{1, -1, -1}
	}
	return nil
}

// LegPrice is the net premium of one leg scaled by its ratio factor.
func LegPrice(leg models.Leg, factor decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for i, w := range weights(leg.Type) {
		if i >= len(leg.Prices) {
			break
		}
		sum = sum.Add(leg.Prices[i].Mul(decimal.NewFromInt(w)))
	}
	return sum.Abs().Mul(factor)
}

// StructurePrice is leg1's net premium less leg2's. A negative value means the
// legs are entered the wrong way round.
func StructurePrice(trade models.Trade) decimal.Decimal {
	r1, r2 := trade.RatioFactors()
	total := LegPrice(trade.Leg1, r1)
	if trade.Leg2 != nil {
		total = total.Sub(LegPrice(*trade.Leg2, r2))
	}
	return total
}

// NeedsSwap reports whether the structure prices negative.
func NeedsSwap(trade models.Trade) bool {
	return StructurePrice(trade).IsNegative()
}

type priceSlot struct {
	leg   int
	index int
	coef  decimal.Decimal
}

// SolvePrice fills the single unpriced slot so the structure trades at target.
// It uses the signed form of the structure price and fails with
// ErrNotSolvable unless exactly one price is missing and the solution is a
// positive premium.
func SolvePrice(trade models.Trade, target decimal.Decimal) (models.Trade, error) {
	r1, r2 := trade.RatioFactors()

	var slots []priceSlot
	for n, leg := range trade.Legs() {
		factor, sign := r1, int64(1)
		if n == 1 {
			factor, sign = r2, -1
		}
		ws := weights(leg.Type)
		for i := range leg.Prices {
			if i >= len(ws) {
				break
			}
			coef := decimal.NewFromInt(ws[i] * sign).Mul(factor)
			slots = append(slots, priceSlot{leg: n + 1, index: i, coef: coef})
		}
	}

	open := -1
	known := decimal.Zero
	scale := int32(2)
	if s := -target.Exponent(); s > scale {
		scale = s
	}
	for i, slot := range slots {
		leg, _ := trade.Leg(slot.leg)
		price := leg.Prices[slot.index]
		if price.IsZero() {
			if open >= 0 {
				return models.Trade{}, apperrors.Wrap(apperrors.ErrNotSolvable, "more than one price is missing")
			}
			open = i
			continue
		}
		if s := -price.Exponent(); s > scale {
			scale = s
		}
		known = known.Add(slot.coef.Mul(price))
	}
	if open < 0 {
		return models.Trade{}, apperrors.Wrap(apperrors.ErrNotSolvable, "no price is missing")
	}

	slot := slots[open]
	if slot.coef.IsZero() {
		return models.Trade{}, apperrors.Wrap(apperrors.ErrNotSolvable, "missing price does not affect the structure")
	}
	solved := target.Sub(known).Div(slot.coef).Round(scale)
	if !solved.IsPositive() {
		return models.Trade{}, apperrors.Wrapf(apperrors.ErrNotSolvable, "solution %s is not a positive premium", solved)
	}

	leg, _ := trade.Leg(slot.leg)
	leg, err := leg.WithPrice(slot.index, solved)
	if err != nil {
		return models.Trade{}, err
	}
	return trade.WithLeg(slot.leg, leg)
}
