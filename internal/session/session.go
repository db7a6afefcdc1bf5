// Package session holds the working state of one confirmation desk: the
// current trade, the notation it came from, and the counterparty lists.
//
// Every edit replaces whole values. A failed edit leaves the session as it
// was. A Session is not safe for concurrent use; callers that share one must
// serialize access.
package session

import (
	"github.com/shopspring/decimal"

	"trade-confirmer/internal/confirm"
	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
	"trade-confirmer/internal/notation"
	"trade-confirmer/internal/trading"
)

// Session is the mutable state behind a confirmation form.
type Session struct {
	trade   *models.Trade
	parsed  *models.ParsedNotation
	buyers  []models.Counterparty
	sellers []models.Counterparty
	gen     *confirm.Generator
	builder trading.Builder
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Trade          *models.Trade          `json:"trade,omitempty"`
	Parsed         *models.ParsedNotation `json:"parsed,omitempty"`
	Buyers         []models.Counterparty  `json:"buyers"`
	Sellers        []models.Counterparty  `json:"sellers"`
	StructurePrice *decimal.Decimal       `json:"structure_price,omitempty"`
	NeedsSwap      bool                   `json:"needs_swap"`
}

// New creates an empty session. A nil generator uses the default options.
// Trades are built on the generator's default exchange.
func New(gen *confirm.Generator) *Session {
	if gen == nil {
		gen = confirm.NewGenerator(confirm.DefaultOptions())
	}
	return &Session{gen: gen, builder: trading.NewBuilder(gen.Exchange())}
}

// Trade returns a copy of the current trade.
func (s *Session) Trade() (models.Trade, bool) {
	if s.trade == nil {
		return models.Trade{}, false
	}
	return s.trade.Clone(), true
}

// Parsed returns the notation record behind the current trade, if any.
func (s *Session) Parsed() (models.ParsedNotation, bool) {
	if s.parsed == nil {
		return models.ParsedNotation{}, false
	}
	return *s.parsed, true
}

// Buyers returns a copy of the buyer list.
func (s *Session) Buyers() []models.Counterparty {
	return append([]models.Counterparty{}, s.buyers...)
}

// Sellers returns a copy of the seller list.
func (s *Session) Sellers() []models.Counterparty {
	return append([]models.Counterparty{}, s.sellers...)
}

// Snapshot copies the whole session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Buyers:  s.Buyers(),
		Sellers: s.Sellers(),
	}
	if t, ok := s.Trade(); ok {
		snap.Trade = &t
		price := trading.StructurePrice(t)
		snap.StructurePrice = &price
		snap.NeedsSwap = price.IsNegative()
	}
	if p, ok := s.Parsed(); ok {
		snap.Parsed = &p
	}
	return snap
}

// Parse replaces the trade with one built from raw. On failure nothing
// changes.
func (s *Session) Parse(raw string) (models.Trade, error) {
	p, err := notation.Parse(raw)
	if err != nil {
		return models.Trade{}, err
	}
	trade, err := s.builder.Build(p)
	if err != nil {
		return models.Trade{}, err
	}
	s.parsed = &p
	s.setTrade(trade)
	return trade.Clone(), nil
}

// BuildStructure replaces the trade with an empty one of the named strategy.
func (s *Session) BuildStructure(strategy string) (models.Trade, error) {
	trade, err := s.builder.Empty(strategy)
	if err != nil {
		return models.Trade{}, err
	}
	s.parsed = nil
	s.setTrade(trade)
	return trade.Clone(), nil
}

// Retype changes the strategy of the current trade, or starts an empty trade
// when there is none.
func (s *Session) Retype(strategy string) (models.Trade, error) {
	if s.trade == nil {
		return s.BuildStructure(strategy)
	}
	trade, err := trading.Retype(*s.trade, strategy)
	if err != nil {
		return models.Trade{}, err
	}
	s.setTrade(trade)
	return trade.Clone(), nil
}

// SetLeg replaces leg n. The leg must match its type's strike count.
func (s *Session) SetLeg(n int, leg models.Leg) error {
	return s.edit(func(t models.Trade) (models.Trade, error) {
		return t.WithLeg(n, leg)
	})
}

// UpdateLeg applies fn to leg n and stores the result.
func (s *Session) UpdateLeg(n int, fn func(models.Leg) (models.Leg, error)) error {
	return s.edit(func(t models.Trade) (models.Trade, error) {
		leg, err := t.Leg(n)
		if err != nil {
			return models.Trade{}, err
		}
		leg, err = fn(leg)
		if err != nil {
			return models.Trade{}, err
		}
		return t.WithLeg(n, leg)
	})
}

// SetRatio sets the "AxB" ratio string.
func (s *Session) SetRatio(ratio string) error {
	if ratio == "" {
		return apperrors.NewValidationError("ratio", ratio, "ratio is required")
	}
	return s.edit(func(t models.Trade) (models.Trade, error) {
		t.Ratio = ratio
		return t, nil
	})
}

// SetExchange sets the clearing exchange.
func (s *Session) SetExchange(exchange string) error {
	return s.edit(func(t models.Trade) (models.Trade, error) {
		t.Exchange = exchange
		return t, nil
	})
}

// SetLive marks the trade live (no futures hedge) or hedged.
func (s *Session) SetLive(live bool) error {
	return s.edit(func(t models.Trade) (models.Trade, error) {
		t.IsLive = live
		return t, nil
	})
}

// SetLots sets the lot count.
func (s *Session) SetLots(lots int) error {
	if lots <= 0 {
		return apperrors.NewValidationError("lots", lots, "lots must be positive")
	}
	return s.edit(func(t models.Trade) (models.Trade, error) {
		t.Lots = lots
		return t, nil
	})
}

// SwapLegs exchanges leg1 and leg2. Every price must be entered first.
func (s *Session) SwapLegs() error {
	return s.edit(trading.SwapLegs)
}

// SolvePrice fills the one missing price so the structure trades at target.
func (s *Session) SolvePrice(target decimal.Decimal) error {
	return s.edit(func(t models.Trade) (models.Trade, error) {
		return trading.SolvePrice(t, target)
	})
}

// AddBuyer appends a buyer.
func (s *Session) AddBuyer(cp models.Counterparty) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	s.buyers = append(s.Buyers(), cp)
	return nil
}

// AddSeller appends a seller.
func (s *Session) AddSeller(cp models.Counterparty) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	s.sellers = append(s.Sellers(), cp)
	return nil
}

// SetCounterparties replaces both lists. Nothing changes if any entry is
// invalid.
func (s *Session) SetCounterparties(buyers, sellers []models.Counterparty) error {
	for _, cp := range append(append([]models.Counterparty{}, buyers...), sellers...) {
		if err := cp.Validate(); err != nil {
			return err
		}
	}
	s.buyers = append([]models.Counterparty{}, buyers...)
	s.sellers = append([]models.Counterparty{}, sellers...)
	return nil
}

// RemoveBuyer drops the buyer at index i.
func (s *Session) RemoveBuyer(i int) error {
	out, err := remove(s.buyers, i, "buyers")
	if err != nil {
		return err
	}
	s.buyers = out
	return nil
}

// RemoveSeller drops the seller at index i.
func (s *Session) RemoveSeller(i int) error {
	out, err := remove(s.sellers, i, "sellers")
	if err != nil {
		return err
	}
	s.sellers = out
	return nil
}

func remove(list []models.Counterparty, i int, field string) ([]models.Counterparty, error) {
	if i < 0 || i >= len(list) {
		return nil, apperrors.NewValidationError(field, i, "index out of range")
	}
	out := make([]models.Counterparty, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// Clear drops the trade, the notation and both counterparty lists.
func (s *Session) Clear() {
	s.trade = nil
	s.parsed = nil
	s.buyers = nil
	s.sellers = nil
}

// Generate renders the confirmation for the current trade and counterparties.
func (s *Session) Generate() (string, error) {
	if s.trade == nil {
		return "", apperrors.ErrNoTrade
	}
	return s.gen.Generate(*s.trade, s.Buyers(), s.Sellers()), nil
}

func (s *Session) edit(fn func(models.Trade) (models.Trade, error)) error {
	if s.trade == nil {
		return apperrors.ErrNoTrade
	}
	trade, err := fn(s.trade.Clone())
	if err != nil {
		return err
	}
	s.setTrade(trade)
	return nil
}

func (s *Session) setTrade(trade models.Trade) {
	t := trade.Clone()
	s.trade = &t
}
