// Package decks rebuilds preconstructed deck lists by joining sparse
// third-party deck records against the master card catalog.
package decks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
	"github.com/ramonehamilton/mtgjson-decks/internal/version"
)

// DeckCardRef is one card entry from a third-party deck listing.
type DeckCardRef struct {
	Name         string               `json:"name" validate:"required"`
	SetCode      string               `json:"set_code,omitempty"`
	Number       string               `json:"number"`
	MultiverseID catalog.MultiverseID `json:"multiverseid"`
	Count        int                  `json:"count" validate:"min=1"`
	Foil         bool                 `json:"foil"`
}

// RawDeck is a deck record as published by the deck source.
type RawDeck struct {
	Name        string        `json:"name" validate:"required"`
	SetCode     string        `json:"set_code" validate:"required"`
	SetName     string        `json:"set_name,omitempty"`
	Type        string        `json:"type"`
	ReleaseDate string        `json:"release_date"`
	Cards       []DeckCardRef `json:"cards" validate:"dive"`
	Sideboard   []DeckCardRef `json:"sideboard" validate:"dive"`
}

// MatchedCard is a catalog card with the deck's ownership attributes
// stamped in.
type MatchedCard struct {
	catalog.Card
	Count  int
	IsFoil bool
}

// MarshalJSON writes the catalog card fields plus count and isFoil as one
// flat object.
func (m MatchedCard) MarshalJSON() ([]byte, error) {
	fields, err := m.Card.Fields()
	if err != nil {
		return nil, err
	}

	count, err := json.Marshal(m.Count)
	if err != nil {
		return nil, err
	}
	foil, err := json.Marshal(m.IsFoil)
	if err != nil {
		return nil, err
	}
	fields["count"] = count
	fields["isFoil"] = foil

	return json.Marshal(fields)
}

// UnmarshalJSON reverses MarshalJSON.
func (m *MatchedCard) UnmarshalJSON(data []byte) error {
	var card catalog.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return err
	}

	if raw, ok := card.Extra["count"]; ok {
		if err := json.Unmarshal(raw, &m.Count); err != nil {
			return fmt.Errorf("decode count: %w", err)
		}
		delete(card.Extra, "count")
	}
	if raw, ok := card.Extra["isFoil"]; ok {
		if err := json.Unmarshal(raw, &m.IsFoil); err != nil {
			return fmt.Errorf("decode isFoil: %w", err)
		}
		delete(card.Extra, "isFoil")
	}
	if len(card.Extra) == 0 {
		card.Extra = nil
	}

	m.Card = card
	return nil
}

// Meta is the build metadata attached to every output file.
type Meta struct {
	Date    string `json:"date"`
	Version string `json:"version"`
}

// NewMeta returns build metadata stamped with t.
func NewMeta(t time.Time) Meta {
	return Meta{
		Date:    t.Format("2006-01-02"),
		Version: version.BuildStamp(t),
	}
}

// Deck is a fully joined preconstructed deck. Boards are assigned once by
// the Builder and not modified afterwards.
type Deck struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	FileName    string        `json:"-"`
	Type        string        `json:"type"`
	ReleaseDate string        `json:"releaseDate"`
	MainBoard   []MatchedCard `json:"mainBoard"`
	SideBoard   []MatchedCard `json:"sideBoard"`
	Meta        Meta          `json:"meta"`

	// Unmatched lists the refs that resolved to nothing, in board order
	// (main board first).
	Unmatched []*NoMatchWarning `json:"-"`
}

// newDeckShell fills the header fields of a deck from its raw record.
func newDeckShell(raw RawDeck) *Deck {
	return &Deck{
		Code:        strings.ToUpper(strings.TrimSpace(raw.SetCode)),
		Name:        raw.Name,
		FileName:    SanitizeFileName(raw.Name),
		Type:        raw.Type,
		ReleaseDate: raw.ReleaseDate,
	}
}

// OutputName returns the file name the deck is persisted under.
func (d *Deck) OutputName() string {
	return fmt.Sprintf("%s_%s.json", d.FileName, d.Code)
}

// CardCount returns the total number of physical cards across both boards.
func (d *Deck) CardCount() int {
	total := 0
	for _, c := range d.MainBoard {
		total += c.Count
	}
	for _, c := range d.SideBoard {
		total += c.Count
	}
	return total
}
