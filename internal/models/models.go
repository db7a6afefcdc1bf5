// Package models defines the trade structures shared by the parser, builder
// and confirmation generator.
package models

import (
	"strings"

	apperrors "trade-confirmer/internal/errors"
)

// Side is the side a counterparty takes in the structure.
type Side string

const (
	SideBuyer  Side = "BUYER"
	SideSeller Side = "SELLER"
)

// Default counterparties used when none are supplied.
const (
	DefaultBuyerName  = "BUYER_1"
	DefaultSellerName = "SELLER_1"
	DefaultQuantity   = 100
)

// Counterparty is one buyer or seller of the structure.
type Counterparty struct {
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Validate checks that the counterparty can appear on a confirmation.
func (c Counterparty) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.NewValidationError("name", c.Name, "counterparty name is required")
	}
	if c.Quantity <= 0 {
		return apperrors.NewValidationError("quantity", c.Quantity, "quantity must be positive")
	}
	return nil
}
