// Package batch confirms many notations described in a YAML file.
package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"trade-confirmer/internal/catalog"
	"trade-confirmer/internal/confirm"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/notation"
	"trade-confirmer/internal/trading"
	"trade-confirmer/pkg/utils"
)

// File is the layout of a batch YAML document.
type File struct {
	Confirmations []Item `yaml:"confirmations"`
}

// Item is one notation to confirm, with the edits a trader would make in the
// form before generating.
type Item struct {
	Notation       string                `yaml:"notation" json:"notation"`
	Strategy       string                `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Leg1Prices     []string              `yaml:"leg1_prices,omitempty" json:"leg1_prices,omitempty"`
	Leg2Prices     []string              `yaml:"leg2_prices,omitempty" json:"leg2_prices,omitempty"`
	StructurePrice string                `yaml:"structure_price,omitempty" json:"structure_price,omitempty"`
	Swap           bool                  `yaml:"swap,omitempty" json:"swap,omitempty"`
	Buyers         []models.Counterparty `yaml:"buyers,omitempty" json:"buyers,omitempty"`
	Sellers        []models.Counterparty `yaml:"sellers,omitempty" json:"sellers,omitempty"`
}

// Result is the outcome of one item. Index is the item's position in the
// input.
type Result struct {
	Index    int           `json:"index"`
	Notation string        `json:"notation"`
	Trade    *models.Trade `json:"trade,omitempty"`
	Text     string        `json:"text,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Load decodes a batch document. Unknown keys are rejected.
func Load(r io.Reader) ([]Item, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	for i, item := range f.Confirmations {
		if strings.TrimSpace(item.Notation) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("confirmations[%d].notation", i), item.Notation, "notation is required")
		}
		if item.Strategy != "" && !catalog.Has(item.Strategy) {
			return nil, apperrors.Wrapf(apperrors.NewStrategyError(item.Strategy), "confirmations[%d]", i)
		}
		for _, cp := range append(append([]models.Counterparty{}, item.Buyers...), item.Sellers...) {
			if err := cp.Validate(); err != nil {
				return nil, apperrors.Wrapf(err, "confirmations[%d]", i)
			}
		}
	}
	return f.Confirmations, nil
}

// Process runs one item through parse, build, edits and generation. Trades
// are built on the generator's default exchange.
func Process(item Item, gen *confirm.Generator) (models.Trade, string, error) {
	p, err := notation.Parse(item.Notation)
	if err != nil {
		return models.Trade{}, "", err
	}
	trade, err := trading.NewBuilder(gen.Exchange()).Build(p)
	if err != nil {
		return models.Trade{}, "", err
	}

	if item.Strategy != "" {
		if trade, err = trading.Retype(trade, item.Strategy); err != nil {
			return models.Trade{}, "", err
		}
	}

	for n, prices := range [][]string{item.Leg1Prices, item.Leg2Prices} {
		if len(prices) == 0 {
			continue
		}
		if trade, err = applyPrices(trade, n+1, prices); err != nil {
			return models.Trade{}, "", err
		}
	}

	target := item.StructurePrice
	if target == "" && p.Price != nil && !p.Price.IsZero() {
		target = p.Price.String()
	}
	if target != "" {
		price, err := decimal.NewFromString(target)
		if err != nil {
			return models.Trade{}, "", apperrors.NewValidationError("structure_price", target, "not a number")
		}
		// a price quoted in the notation is only applied when it solves
		solved, err := trading.SolvePrice(trade, price)
		switch {
		case err == nil:
			trade = solved
		case item.StructurePrice != "":
			return models.Trade{}, "", err
		}
	}

	if item.Swap {
		if trade, err = trading.SwapLegs(trade); err != nil {
			return models.Trade{}, "", err
		}
	}

	return trade, gen.Generate(trade, item.Buyers, item.Sellers), nil
}

func applyPrices(trade models.Trade, n int, prices []string) (models.Trade, error) {
	leg, err := trade.Leg(n)
	if err != nil {
		return models.Trade{}, err
	}
	if len(prices) > len(leg.Prices) {
		return models.Trade{}, apperrors.NewLegError("prices", len(prices), fmt.Sprintf("leg %d takes %d prices", n, len(leg.Prices)))
	}
	for i, raw := range prices {
		if leg, err = leg.WithPrice(i, utils.ParseDecimal(raw)); err != nil {
			return models.Trade{}, err
		}
	}
	return trade.WithLeg(n, leg)
}
