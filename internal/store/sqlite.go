// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/models"
	"trade-confirmer/pkg/utils"
)

// SQLiteStore implements Journal using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS confirmations (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		notation TEXT,
		strategy TEXT NOT NULL,
		exchange TEXT NOT NULL,
		trade TEXT NOT NULL,
		buyers TEXT NOT NULL,
		sellers TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_confirmations_created ON confirmations(created_at);
	CREATE INDEX IF NOT EXISTS idx_confirmations_strategy ON confirmations(strategy);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores a confirmation.
func (s *SQLiteStore) Save(ctx context.Context, c *models.Confirmation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Strategy == "" {
		c.Strategy = c.Trade.StrategyType
	}
	if c.Exchange == "" {
		c.Exchange = c.Trade.Exchange
	}

	tradeJSON, err := json.Marshal(c.Trade)
	if err != nil {
		return apperrors.NewDataError("save", c.ID, err)
	}
	buyersJSON, _ := json.Marshal(nonNil(c.Buyers))
	sellersJSON, _ := json.Marshal(nonNil(c.Sellers))

	// lock contention that outlasts busy_timeout is retried
	err = utils.Retry(ctx, writeRetry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO confirmations (id, created_at, notation, strategy, exchange, trade, buyers, sellers, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.CreatedAt, c.Notation, c.Strategy, c.Exchange, string(tradeJSON), string(buyersJSON), string(sellersJSON), c.Text)
		return err
	})
	if err != nil {
		return apperrors.NewDataError("save", c.ID, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error()))
	}
	return nil
}

var writeRetry = func() utils.RetryConfig {
	cfg := utils.DefaultRetryConfig()
	cfg.Retryable = isBusy
	return cfg
}()

// isBusy reports whether err is SQLite lock contention.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func nonNil(list []models.Counterparty) []models.Counterparty {
	if list == nil {
		return []models.Counterparty{}
	}
	return list
}

const selectConfirmation = `SELECT id, created_at, COALESCE(notation, ''), strategy, exchange, trade, buyers, sellers, text FROM confirmations`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConfirmation(row scanner) (*models.Confirmation, error) {
	var c models.Confirmation
	var tradeJSON, buyersJSON, sellersJSON string

	if err := row.Scan(&c.ID, &c.CreatedAt, &c.Notation, &c.Strategy, &c.Exchange, &tradeJSON, &buyersJSON, &sellersJSON, &c.Text); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tradeJSON), &c.Trade); err != nil {
		return nil, apperrors.NewDataError("decode", c.ID, err)
	}
	if err := json.Unmarshal([]byte(buyersJSON), &c.Buyers); err != nil {
		return nil, apperrors.NewDataError("decode", c.ID, err)
	}
	if err := json.Unmarshal([]byte(sellersJSON), &c.Sellers); err != nil {
		return nil, apperrors.NewDataError("decode", c.ID, err)
	}
	return &c, nil
}

// Get retrieves one confirmation by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Confirmation, error) {
	c, err := scanConfirmation(s.db.QueryRowContext(ctx, selectConfirmation+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewDataError("get", id, apperrors.ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return c, nil
}

// List retrieves confirmations matching filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ConfirmationFilter) ([]models.Confirmation, error) {
	query := selectConfirmation + " WHERE 1=1"
	args := []interface{}{}

	if filter.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy)
	}
	if filter.Exchange != "" {
		query += " AND exchange = ?"
		args = append(args, filter.Exchange)
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmations: %w", err)
	}
	defer rows.Close()

	var out []models.Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

// Delete removes one confirmation.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM confirmations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete confirmation: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewDataError("delete", id, apperrors.ErrDataNotFound)
	}
	return nil
}
