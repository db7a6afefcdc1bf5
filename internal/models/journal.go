package models

import "time"

// Confirmation is a generated confirmation as recorded in the journal.
type Confirmation struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Notation  string         `json:"notation,omitempty"`
	Strategy  string         `json:"strategy"`
	Exchange  string         `json:"exchange"`
	Trade     Trade          `json:"trade"`
	Buyers    []Counterparty `json:"buyers"`
	Sellers   []Counterparty `json:"sellers"`
	Text      string         `json:"text"`
}
