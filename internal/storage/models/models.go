// Package models defines the rows persisted by the storage layer.
package models

import "time"

// DeckRecord is a built deck as stored in the decks table.
type DeckRecord struct {
	ID          string
	Code        string
	Name        string
	FileName    string
	Type        string
	ReleaseDate string
	CardCount   int
	ContentHash string
	Body        []byte // Serialized deck JSON; empty in List results
	BuiltAt     time.Time
	UpdatedAt   time.Time
}

// ReferralRecord is one short code of the referral map.
type ReferralRecord struct {
	ShortCode string
	URL       string
	UpdatedAt time.Time
}
