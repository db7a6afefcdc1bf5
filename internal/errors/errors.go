// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMalformedInput  = errors.New("malformed trade notation")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidLeg      = errors.New("invalid leg")
	ErrNotSolvable     = errors.New("price not solvable")
	ErrSwapNotReady    = errors.New("legs cannot be swapped")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoTrade         = errors.New("no trade in session")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrDataNotFound    = errors.New("data not found")
	ErrDatabaseError   = errors.New("database error")
	ErrInputValidation = errors.New("input validation failed")
)

// NotationError reports a trade notation that could not be parsed.
type NotationError struct {
	Input  string
	Reason string
}

func (e *NotationError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *NotationError) Unwrap() error {
	return ErrMalformedInput
}

// NewNotationError creates a new NotationError.
func NewNotationError(input, reason string) *NotationError {
	return &NotationError{
		Input:  input,
		Reason: reason,
	}
}

// StrategyError reports a strategy name missing from the catalog.
type StrategyError struct {
	Name string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q", e.Name)
}

func (e *StrategyError) Unwrap() error {
	return ErrUnknownStrategy
}

// NewStrategyError creates a new StrategyError.
func NewStrategyError(name string) *StrategyError {
	return &StrategyError{Name: name}
}

// LegError represents an invalid whole-leg edit.
type LegError struct {
	Field   string
	Index   int
	Message string
}

func (e *LegError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid leg: %s", e.Message)
	}
	return fmt.Sprintf("invalid leg %s[%d]: %s", e.Field, e.Index, e.Message)
}

func (e *LegError) Unwrap() error {
	return ErrInvalidLeg
}

// NewLegError creates a new LegError.
func NewLegError(field string, index int, message string) *LegError {
	return &LegError{
		Field:   field,
		Index:   index,
		Message: message,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataError represents a journal storage error.
type DataError struct {
	Operation string
	ID        string
	Err       error
}

func (e *DataError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("data error [%s] %s: %v", e.Operation, e.ID, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %v", e.Operation, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(operation, id string, err error) *DataError {
	return &DataError{
		Operation: operation,
		ID:        id,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
