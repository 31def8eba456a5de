package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtgjson-decks/internal/referral"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/models"
)

// ReferralRepository handles database operations for the referral map.
type ReferralRepository interface {
	// Upsert stores pairs in one transaction. A short code seen again
	// takes the later URL.
	Upsert(ctx context.Context, pairs []referral.Pair) error

	// Get retrieves the entry for shortCode. Returns nil when unknown.
	Get(ctx context.Context, shortCode string) (*models.ReferralRecord, error)

	// Count returns the number of distinct short codes.
	Count(ctx context.Context) (int, error)
}

type referralRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewReferralRepository creates a new referral repository.
func NewReferralRepository(db *sql.DB) ReferralRepository {
	return &referralRepository{db: db, now: time.Now}
}

func (r *referralRepository) Upsert(ctx context.Context, pairs []referral.Pair) (err error) {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO referrals (short_code, url, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(short_code) DO UPDATE SET
			url = excluded.url,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare referral upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := r.now().UTC()
	for _, p := range pairs {
		if _, err = stmt.ExecContext(ctx, p.ShortCode, p.URL, now); err != nil {
			return fmt.Errorf("failed to upsert referral %q: %w", p.ShortCode, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit referrals: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, shortCode string) (*models.ReferralRecord, error) {
	rec := &models.ReferralRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT short_code, url, updated_at FROM referrals WHERE short_code = ?`,
		shortCode,
	).Scan(&rec.ShortCode, &rec.URL, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return rec, nil
}

func (r *referralRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM referrals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return n, nil
}
