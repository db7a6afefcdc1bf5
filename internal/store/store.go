// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-confirmer/internal/models"
)

// Journal records generated confirmations.
type Journal interface {
	// Save stores a confirmation, assigning an ID and timestamp when unset.
	Save(ctx context.Context, c *models.Confirmation) error
	// Get returns the confirmation with the given ID or ErrDataNotFound.
	Get(ctx context.Context, id string) (*models.Confirmation, error)
	// List returns confirmations newest first.
	List(ctx context.Context, filter ConfirmationFilter) ([]models.Confirmation, error)
	// Delete removes one confirmation.
	Delete(ctx context.Context, id string) error

	Close() error
}

// ConfirmationFilter represents filters for querying the journal.
type ConfirmationFilter struct {
	Strategy  string
	Exchange  string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
