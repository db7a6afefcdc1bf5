// Package security validates text that reaches the confirmer from outside:
// notations, counterparty names and journal IDs typed into the CLI or posted
// to the HTTP adapter.
package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
)

// Limits
const (
	MaxNotationLength = 256
	MaxNameLength     = 64
)

// Counterparty names: letters, digits and the punctuation firms use in names.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9 _.&'/-]+$`)

// InputValidator checks user input before it is parsed or stored.
type InputValidator struct {
	maxNotation int
}

// NewInputValidator creates a validator with the default limits.
func NewInputValidator() *InputValidator {
	return &InputValidator{maxNotation: MaxNotationLength}
}

// ValidateNotation rejects empty, oversized or control-character input.
func (v *InputValidator) ValidateNotation(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.NewValidationError("notation", raw, "notation cannot be empty")
	}
	if len(raw) > v.maxNotation {
		return apperrors.NewValidationError("notation", truncate(raw), fmt.Sprintf("notation too long (max %d characters)", v.maxNotation))
	}
	if i := strings.IndexFunc(raw, isControl); i >= 0 {
		return apperrors.NewValidationError("notation", truncate(raw), fmt.Sprintf("control character at position %d", i))
	}
	return nil
}

// ValidateCounterparty checks the name format on top of Counterparty.Validate.
func (v *InputValidator) ValidateCounterparty(cp models.Counterparty) error {
	if err := cp.Validate(); err != nil {
		return err
	}
	name := strings.TrimSpace(cp.Name)
	if len(name) > MaxNameLength {
		return apperrors.NewValidationError("name", truncate(name), fmt.Sprintf("name too long (max %d characters)", MaxNameLength))
	}
	if !namePattern.MatchString(name) {
		return apperrors.NewValidationError("name", name, "invalid counterparty name")
	}
	return nil
}

// ValidateCounterparties checks every buyer and seller.
func (v *InputValidator) ValidateCounterparties(buyers, sellers []models.Counterparty) error {
	for _, cp := range buyers {
		if err := v.ValidateCounterparty(cp); err != nil {
			return err
		}
	}
	for _, cp := range sellers {
		if err := v.ValidateCounterparty(cp); err != nil {
			return err
		}
	}
	return nil
}

// ValidateJournalID checks that id is a UUID as issued by the journal.
func (v *InputValidator) ValidateJournalID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return apperrors.NewValidationError("id", id, "not a journal ID")
	}
	return nil
}

func isControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}

func truncate(s string) string {
	if len(s) <= 50 {
		return s
	}
	return s[:50] + "..."
}
