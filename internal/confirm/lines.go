package confirm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade-confirmer/internal/catalog"
	"trade-confirmer/internal/models"
	"trade-confirmer/pkg/utils"
)

// optionLine is one rendered option fill.
type optionLine struct {
	buy    bool
	qty    decimal.Decimal
	expiry string
	strike decimal.Decimal
	kind   string
	price  decimal.Decimal
}

func (l optionLine) String() string {
	verb, prep := "Sells", "at"
	if l.buy {
		verb, prep = "Buys", "for"
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s",
		verb, utils.FormatQuantity(l.qty), l.expiry, utils.FormatPrice(l.strike), l.kind, prep, utils.FormatPrice(l.price))
}

// futuresLine is the delta hedge for one leg.
type futuresLine struct {
	buy        bool
	qty        decimal.Decimal
	expiry     string
	underlying decimal.Decimal
}

func (l futuresLine) String() string {
	verb := "Sells"
	if l.buy {
		verb = "Buys"
	}
	return fmt.Sprintf("%s %s %s %s Futures", verb, utils.FormatQuantity(l.qty), l.expiry, utils.FormatPrice(l.underlying))
}

// legQuantity carries the counterparty quantity and the ratio factors for one
// leg. own scales single options, trees and the fly middle; pair scales the
// second side of a spread, fence, straddle or strangle. The first strike of a
// multi-strike leg trades the unscaled base.
type legQuantity struct {
	base decimal.Decimal
	own  decimal.Decimal
	pair decimal.Decimal
}

func (q legQuantity) scaled() decimal.Decimal { return q.base.Mul(q.own) }
func (q legQuantity) second() decimal.Decimal { return q.base.Mul(q.pair) }

func kindOf(t catalog.OptionType) string {
	if t.IsCallFamily() {
		return "call"
	}
	return "put"
}

// legLines renders the option lines of one leg. buy is the leg's effective
// direction for the counterparty. ok is false for leg types that cannot be
// rendered; the single returned line is then a comment.
func legLines(leg models.Leg, q legQuantity, buy bool) (lines []string, ok bool) {
	n := catalog.RequiredStrikeCount(leg.Type)
	if n == 0 {
		return []string{fmt.Sprintf("// Unknown leg type: %s", leg.Type)}, false
	}
	strikes := models.Resize(leg.Strikes, n)
	prices := models.Resize(leg.Prices, n)

	at := func(i int, buy bool, qty decimal.Decimal, kind string) string {
		return optionLine{
			buy:    buy,
			qty:    qty,
			expiry: leg.Expiry,
			strike: strikes[i],
			kind:   kind,
			price:  prices[i],
		}.String()
	}

	switch leg.Type {
	case catalog.Call, catalog.Put:
		lines = append(lines, at(0, buy, q.scaled(), kindOf(leg.Type)))

	case catalog.CallSpread, catalog.PutSpread:
		kind := kindOf(leg.Type)
		lines = append(lines,
			at(0, buy, q.base, kind),
			at(1, !buy, utils.RoundLots(q.second()), kind))

	case catalog.Fence:
		lines = append(lines,
			at(0, buy, q.base, "put"),
			at(1, !buy, utils.RoundLots(q.second()), "call"))

	case catalog.Straddle, catalog.Strangle:
		callStrike := 1
		if leg.Type == catalog.Straddle && strikes[1].IsZero() {
			callStrike = 0
		}
		put := at(0, buy, q.base, "put")
		call := optionLine{
			buy:    buy,
			qty:    q.second(),
			expiry: leg.Expiry,
			strike: strikes[callStrike],
			kind:   "call",
			price:  prices[1],
		}.String()
		lines = append(lines, put, call)

	case catalog.CallFly, catalog.PutFly:
		kind := kindOf(leg.Type)
		middle := utils.RoundLots(q.scaled().Mul(decimal.NewFromInt(2)))
		lines = append(lines,
			at(0, buy, q.base, kind),
			at(1, !buy, middle, kind),
			at(2, buy, q.base, kind))

	case catalog.CallTree, catalog.PutTree:
		kind := kindOf(leg.Type)
		lines = append(lines,
			at(0, buy, q.scaled(), kind),
			at(1, !buy, q.scaled(), kind),
			at(2, !buy, q.scaled(), kind))

	default:
		return []string{fmt.Sprintf("// Unknown leg type: %s", leg.Type)}, false
	}
	return lines, true
}

// hedgeLine sizes the futures hedge of a leg. Calls hedge opposite to the
// option direction, everything else the same way.
func hedgeLine(leg models.Leg, base, factor decimal.Decimal, buy bool, fallback decimal.Decimal) string {
	var qty decimal.Decimal
	if leg.Delta != 0 {
		delta := decimal.NewFromInt(int64(leg.Delta)).Abs()
		qty = base.Mul(factor).Mul(delta).Div(decimal.NewFromInt(100))
	} else {
		qty = base.Mul(factor).Mul(fallback)
	}

	hedgeBuy := buy
	if leg.Type.IsCallFamily() {
		hedgeBuy = !buy
	}
	return futuresLine{
		buy:        hedgeBuy,
		qty:        utils.RoundLots(qty),
		expiry:     leg.Expiry,
		underlying: leg.Underlying,
	}.String()
}
