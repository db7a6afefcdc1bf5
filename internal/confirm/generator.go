// Package confirm renders per-counterparty confirmation text for a trade.
package confirm

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trade-confirmer/internal/models"
)

// DefaultHedgeFallback sizes the futures hedge of a leg with no delta.
var DefaultHedgeFallback = decimal.RequireFromString("0.4")

// Options controls the defaults a Generator falls back on.
type Options struct {
	// Exchange is printed when the trade names none.
	Exchange      string
	BuyerName     string
	SellerName    string
	Quantity      int
	HedgeFallback decimal.Decimal
}

// DefaultOptions returns the built-in counterparty and hedge defaults.
func DefaultOptions() Options {
	return Options{
		Exchange:      models.DefaultExchange,
		BuyerName:     models.DefaultBuyerName,
		SellerName:    models.DefaultSellerName,
		Quantity:      models.DefaultQuantity,
		HedgeFallback: DefaultHedgeFallback,
	}
}

// Generator renders confirmations. It holds no state between calls.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator, filling unset options with defaults.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if strings.TrimSpace(opts.Exchange) == "" {
		opts.Exchange = def.Exchange
	}
	if strings.TrimSpace(opts.BuyerName) == "" {
		opts.BuyerName = def.BuyerName
	}
	if strings.TrimSpace(opts.SellerName) == "" {
		opts.SellerName = def.SellerName
	}
	if opts.Quantity <= 0 {
		opts.Quantity = def.Quantity
	}
	if !opts.HedgeFallback.IsPositive() {
		opts.HedgeFallback = def.HedgeFallback
	}
	return &Generator{opts: opts}
}

// Generate renders a trade with the default options.
func Generate(trade models.Trade, buyers, sellers []models.Counterparty) string {
	return NewGenerator(DefaultOptions()).Generate(trade, buyers, sellers)
}

// Generate renders one block per counterparty, buyers first, separated by a
// blank line. When both lists are empty a default buyer and seller are used.
// Legs that cannot be rendered become comment lines; Generate never fails.
func (g *Generator) Generate(trade models.Trade, buyers, sellers []models.Counterparty) string {
	if len(buyers) == 0 && len(sellers) == 0 {
		buyers = []models.Counterparty{{Name: g.opts.BuyerName, Quantity: g.opts.Quantity}}
		sellers = []models.Counterparty{{Name: g.opts.SellerName, Quantity: g.opts.Quantity}}
	}

	blocks := make([]string, 0, len(buyers)+len(sellers))
	for _, b := range buyers {
		blocks = append(blocks, g.block(trade, b, models.SideBuyer))
	}
	for _, s := range sellers {
		blocks = append(blocks, g.block(trade, s, models.SideSeller))
	}
	return strings.Join(blocks, "\n\n")
}

func (g *Generator) block(trade models.Trade, cp models.Counterparty, side models.Side) string {
	lines := []string{
		fmt.Sprintf("%s (%dX): %s", side, cp.Quantity, strings.ToUpper(cp.Name)),
		fmt.Sprintf("To Confirm: %s Cleared", g.exchangeOf(trade)),
	}
	lines = append(lines, g.tradeLines(trade, cp.Quantity, side == models.SideBuyer)...)
	return strings.Join(lines, "\n")
}

// Exchange returns the exchange printed for trades that name none. Trade
// builders use it as their default.
func (g *Generator) Exchange() string {
	return g.opts.Exchange
}

func (g *Generator) exchangeOf(trade models.Trade) string {
	if trade.Exchange == "" {
		return g.opts.Exchange
	}
	return trade.Exchange
}

// tradeLines renders every leg for one counterparty and places the futures
// hedge. Legs sharing an underlying get a single hedge, sized from leg1,
// after the last leg.
func (g *Generator) tradeLines(trade models.Trade, quantity int, isBuyer bool) []string {
	r1, r2 := trade.RatioFactors()
	base := decimal.NewFromInt(int64(quantity))
	legs := trade.Legs()
	shared := trade.Leg2 == nil || trade.Leg1.Underlying.Equal(trade.Leg2.Underlying)

	var lines []string
	rendered := make([]bool, len(legs))
	for i, leg := range legs {
		own := r1
		pair := r2
		if i == 1 {
			own = r2
		}
		if len(legs) == 2 {
			pair = own
		}

		buy := effectiveBuy(leg, isBuyer)
		legOut, ok := legLines(leg, legQuantity{base: base, own: own, pair: pair}, buy)
		lines = append(lines, legOut...)
		rendered[i] = ok

		if !trade.IsLive && !shared && ok {
			lines = append(lines, hedgeLine(leg, base, own, buy, g.opts.HedgeFallback))
		}
	}

	if !trade.IsLive && shared && rendered[0] {
		leg1 := trade.Leg1
		lines = append(lines, hedgeLine(leg1, base, r1, effectiveBuy(leg1, isBuyer), g.opts.HedgeFallback))
	}
	return lines
}

// effectiveBuy mirrors every leg for sellers.
func effectiveBuy(leg models.Leg, isBuyer bool) bool {
	if isBuyer {
		return leg.IsBuy
	}
	return !leg.IsBuy
}
