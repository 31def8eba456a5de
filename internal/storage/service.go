package storage

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
	"github.com/ramonehamilton/mtgjson-decks/internal/referral"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/models"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/repository"
)

// Service provides the storage operations used by the CLI and API.
type Service struct {
	db        *DB
	decks     repository.DeckRepository
	referrals repository.ReferralRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:        db,
		decks:     repository.NewDeckRepository(db.Conn()),
		referrals: repository.NewReferralRepository(db.Conn()),
	}
}

// SaveDeck stores a built deck, reporting whether the row changed.
func (s *Service) SaveDeck(ctx context.Context, deck *decks.Deck) (bool, error) {
	changed, err := s.decks.Save(ctx, deck)
	if err != nil {
		return false, fmt.Errorf("save deck %q: %w", deck.Name, err)
	}
	return changed, nil
}

// GetDeck returns a stored deck or nil.
func (s *Service) GetDeck(ctx context.Context, code, fileName string) (*models.DeckRecord, error) {
	return s.decks.Get(ctx, code, fileName)
}

// ListDecks returns summaries of every stored deck.
func (s *Service) ListDecks(ctx context.Context) ([]*models.DeckRecord, error) {
	return s.decks.List(ctx)
}

// StoreReferrals upserts referral pairs.
func (s *Service) StoreReferrals(ctx context.Context, pairs []referral.Pair) error {
	return s.referrals.Upsert(ctx, pairs)
}

// ResolveReferral returns the entry for shortCode or nil.
func (s *Service) ResolveReferral(ctx context.Context, shortCode string) (*models.ReferralRecord, error) {
	return s.referrals.Get(ctx, shortCode)
}

// ReferralCount returns the number of stored short codes.
func (s *Service) ReferralCount(ctx context.Context) (int, error) {
	return s.referrals.Count(ctx)
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
