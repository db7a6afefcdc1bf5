package errors

import (
	"fmt"
	"testing"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"notation", NewNotationError("Z25", "no strike token"), ErrMalformedInput},
		{"strategy", NewStrategyError("Jade Lizard"), ErrUnknownStrategy},
		{"leg", NewLegError("prices", 3, "index out of range"), ErrInvalidLeg},
		{"validation", NewValidationError("quantity", -1, "must be positive"), ErrInputValidation},
		{"data", NewDataError("get", "abc", ErrDataNotFound), ErrDataNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "handling request")
			if !Is(wrapped, tt.target) {
				t.Errorf("Is(%v, %v) = false, want true", wrapped, tt.target)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestAsNotationError(t *testing.T) {
	err := fmt.Errorf("parse: %w", NewNotationError("hello", "no expiry code"))

	var notationErr *NotationError
	if !As(err, &notationErr) {
		t.Fatal("expected NotationError in chain")
	}
	if notationErr.Input != "hello" {
		t.Errorf("Input = %q, want %q", notationErr.Input, "hello")
	}
	if got := notationErr.Error(); got != `cannot parse "hello": no expiry code` {
		t.Errorf("Error() = %q", got)
	}
}
