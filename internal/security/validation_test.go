package security

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
)

func TestValidateNotation(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"call", "Z25 5.00c x3.30 40d", false},
		{"versus", "Z25 5.00c vs H26 4.50p", false},
		{"tab", "Z25\t5.00c", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"newline", "Z25 5.00c\nDROP", true},
		{"null byte", "Z25\x005.00c", true},
		{"too long", strings.Repeat("Z25 ", 100), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateNotation(tt.input)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCounterparty(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name    string
		cp      models.Counterparty
		wantErr bool
	}{
		{"plain", models.Counterparty{Name: "acme", Quantity: 100}, false},
		{"punctuated", models.Counterparty{Name: "O'Brien & Sons-Ltd.", Quantity: 1}, false},
		{"zero quantity", models.Counterparty{Name: "acme", Quantity: 0}, true},
		{"empty name", models.Counterparty{Name: " ", Quantity: 5}, true},
		{"semicolon", models.Counterparty{Name: "acme; drop", Quantity: 5}, true},
		{"too long", models.Counterparty{Name: strings.Repeat("a", MaxNameLength+1), Quantity: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCounterparty(tt.cp)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := v.ValidateCounterparties(
		[]models.Counterparty{{Name: "acme", Quantity: 1}},
		[]models.Counterparty{{Name: "bad|name", Quantity: 1}},
	)
	assert.Error(t, err)
}

func TestValidateJournalID(t *testing.T) {
	v := NewInputValidator()
	assert.NoError(t, v.ValidateJournalID(uuid.NewString()))
	assert.Error(t, v.ValidateJournalID("1; DROP TABLE confirmations"))
	assert.Error(t, v.ValidateJournalID(""))
}
