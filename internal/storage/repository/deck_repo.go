package repository

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/models"
)

// DeckRepository handles database operations for built decks.
type DeckRepository interface {
	// Save inserts or replaces the deck keyed by (code, file name). It
	// reports false without writing when the stored content is identical.
	Save(ctx context.Context, deck *decks.Deck) (bool, error)

	// Get retrieves a deck by set code and sanitized file name. Returns
	// nil when no such deck is stored.
	Get(ctx context.Context, code, fileName string) (*models.DeckRecord, error)

	// List retrieves every stored deck without its body, ordered by code
	// and file name.
	List(ctx context.Context) ([]*models.DeckRecord, error)
}

type deckRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db *sql.DB) DeckRepository {
	return &deckRepository{db: db, now: time.Now}
}

// ContentHash returns the blake2b-256 digest of a deck's content. Build
// metadata is excluded so a rebuild of an unchanged deck hashes the same.
func ContentHash(deck *decks.Deck) (string, error) {
	stripped := *deck
	stripped.Meta = decks.Meta{}

	data, err := json.Marshal(&stripped)
	if err != nil {
		return "", fmt.Errorf("failed to marshal deck for hashing: %w", err)
	}

	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (r *deckRepository) Save(ctx context.Context, deck *decks.Deck) (bool, error) {
	hash, err := ContentHash(deck)
	if err != nil {
		return false, err
	}

	var existing string
	err = r.db.QueryRowContext(ctx,
		`SELECT content_hash FROM decks WHERE code = ? AND file_name = ?`,
		deck.Code, deck.FileName,
	).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("failed to look up deck: %w", err)
	case existing == hash:
		return false, nil
	}

	body, err := json.Marshal(deck)
	if err != nil {
		return false, fmt.Errorf("failed to marshal deck: %w", err)
	}

	now := r.now().UTC()
	query := `
		INSERT INTO decks (
			id, code, name, file_name, type, release_date,
			card_count, content_hash, body, built_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, file_name) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			release_date = excluded.release_date,
			card_count = excluded.card_count,
			content_hash = excluded.content_hash,
			body = excluded.body,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.NewString(),
		deck.Code,
		deck.Name,
		deck.FileName,
		deck.Type,
		deck.ReleaseDate,
		deck.CardCount(),
		hash,
		body,
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save deck: %w", err)
	}

	return true, nil
}

func (r *deckRepository) Get(ctx context.Context, code, fileName string) (*models.DeckRecord, error) {
	query := `
		SELECT id, code, name, file_name, type, release_date,
		       card_count, content_hash, body, built_at, updated_at
		FROM decks
		WHERE code = ? AND file_name = ?
	`

	rec := &models.DeckRecord{}
	err := r.db.QueryRowContext(ctx, query, code, fileName).Scan(
		&rec.ID,
		&rec.Code,
		&rec.Name,
		&rec.FileName,
		&rec.Type,
		&rec.ReleaseDate,
		&rec.CardCount,
		&rec.ContentHash,
		&rec.Body,
		&rec.BuiltAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	return rec, nil
}

func (r *deckRepository) List(ctx context.Context) ([]*models.DeckRecord, error) {
	query := `
		SELECT id, code, name, file_name, type, release_date,
		       card_count, content_hash, built_at, updated_at
		FROM decks
		ORDER BY code, file_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*models.DeckRecord
	for rows.Next() {
		rec := &models.DeckRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.Code,
			&rec.Name,
			&rec.FileName,
			&rec.Type,
			&rec.ReleaseDate,
			&rec.CardCount,
			&rec.ContentHash,
			&rec.BuiltAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return records, nil
}
