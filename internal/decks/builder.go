package decks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
	"github.com/ramonehamilton/mtgjson-decks/internal/metrics"
	"github.com/ramonehamilton/mtgjson-decks/internal/workerpool"
)

// matchFunc is the signature of Match; the builder holds it as a field so
// tests can slow individual matches down.
type matchFunc func(ref DeckCardRef, setCards []catalog.Card) ([]MatchedCard, *NoMatchWarning)

// Builder joins raw deck records against a catalog. The catalog and pool are
// injected and shared; one Builder serves every deck of a run.
type Builder struct {
	catalog *catalog.Catalog
	pool    *workerpool.Pool
	logger  *slog.Logger
	metrics *metrics.BuildMetrics
	now     func() time.Time
	match   matchFunc
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	Catalog *catalog.Catalog
	Pool    *workerpool.Pool
	Logger  *slog.Logger
	Metrics *metrics.BuildMetrics
}

// NewBuilder creates a Builder. It refuses to start with a catalog that is
// not ready.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if err := cfg.Catalog.Ready(); err != nil {
		return nil, err
	}
	if cfg.Pool == nil {
		return nil, fmt.Errorf("worker pool is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewBuildMetrics()
	}

	return &Builder{
		catalog: cfg.Catalog,
		pool:    cfg.Pool,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     time.Now,
		match:   Match,
	}, nil
}

// Metrics returns the builder's metrics collector.
func (b *Builder) Metrics() *metrics.BuildMetrics {
	return b.metrics
}

// BuildDeck joins one raw deck. A set missing from the catalog returns a
// MissingSetError and no deck; cards without a catalog match are left out
// and recorded in Deck.Unmatched. If ctx is cancelled or the pool shuts
// down mid-board, the partial deck is discarded.
func (b *Builder) BuildDeck(ctx context.Context, raw RawDeck) (*Deck, error) {
	start := time.Now()
	deck := newDeckShell(raw)

	sets, err := b.resolveSets(deck, raw)
	if err != nil {
		return nil, err
	}

	mainBoard, mainUnmatched, err := b.joinBoard(ctx, deck.Code, raw.Cards, sets)
	if err != nil {
		return nil, fmt.Errorf("build main board of %q: %w", deck.Name, err)
	}

	sideBoard, sideUnmatched, err := b.joinBoard(ctx, deck.Code, raw.Sideboard, sets)
	if err != nil {
		return nil, fmt.Errorf("build side board of %q: %w", deck.Name, err)
	}

	deck.MainBoard = mainBoard
	deck.SideBoard = sideBoard
	deck.Unmatched = append(mainUnmatched, sideUnmatched...)
	deck.Meta = NewMeta(b.now())

	b.metrics.RecordDeck(time.Since(start))
	b.logger.Debug("Deck built",
		"deck", deck.Name,
		"code", deck.Code,
		"main", len(deck.MainBoard),
		"side", len(deck.SideBoard),
		"unmatched", len(deck.Unmatched))

	return deck, nil
}

// setCodeFor returns the catalog set a ref resolves against: its own set
// code when the source provides one, otherwise the deck's.
func setCodeFor(deckCode string, ref DeckCardRef) string {
	if code := strings.TrimSpace(ref.SetCode); code != "" {
		return strings.ToUpper(code)
	}
	return deckCode
}

// resolveSets looks up every set the deck touches before any matching
// starts, so a missing set never produces a partial deck.
func (b *Builder) resolveSets(deck *Deck, raw RawDeck) (map[string][]catalog.Card, error) {
	sets := make(map[string][]catalog.Card)

	need := func(code string) error {
		if _, ok := sets[code]; ok {
			return nil
		}
		set, ok := b.catalog.Set(code)
		if !ok {
			return &MissingSetError{DeckName: deck.Name, SetCode: code}
		}
		sets[code] = set.Cards
		return nil
	}

	if err := need(deck.Code); err != nil {
		return nil, err
	}
	for _, board := range [][]DeckCardRef{raw.Cards, raw.Sideboard} {
		for _, ref := range board {
			if err := need(setCodeFor(deck.Code, ref)); err != nil {
				return nil, err
			}
		}
	}
	return sets, nil
}

// joinBoard matches every ref on the shared pool and concatenates the
// per-ref results in input order, independent of completion order.
func (b *Builder) joinBoard(ctx context.Context, deckCode string, refs []DeckCardRef, sets map[string][]catalog.Card) ([]MatchedCard, []*NoMatchWarning, error) {
	results := make([][]MatchedCard, len(refs))
	warnings := make([]*NoMatchWarning, len(refs))

	group := b.pool.NewGroup()
	var submitErr error
	for i, ref := range refs {
		setCode := setCodeFor(deckCode, ref)
		setCards := sets[setCode]

		err := group.Go(ctx, func() {
			start := time.Now()
			matches, warning := b.match(ref, setCards)
			b.metrics.RecordMatch(time.Since(start), len(matches))

			if warning != nil {
				warning.SetCode = setCode
				warnings[i] = warning
			}
			results[i] = matches
		})
		if err != nil {
			submitErr = err
			break
		}
	}
	group.Wait()

	if submitErr != nil {
		return nil, nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	board := make([]MatchedCard, 0, total)
	var unmatched []*NoMatchWarning
	for i := range results {
		board = append(board, results[i]...)
		if warnings[i] != nil {
			b.logger.Warn("No matches found for card", "warning", warnings[i].Error())
			unmatched = append(unmatched, warnings[i])
		}
	}
	return board, unmatched, nil
}

// BuildReport summarizes a BuildAll run.
type BuildReport struct {
	Built     int
	Skipped   int
	Unmatched int
}

// BuildAll builds every raw deck in order and hands each finished deck to
// sink. Invalid records, decks referencing missing sets and decks the sink
// rejects are logged and skipped; other decks are unaffected. Cancellation
// of ctx stops the run and returns the report so far.
func (b *Builder) BuildAll(ctx context.Context, raws []RawDeck, sink func(*Deck) error) (*BuildReport, error) {
	report := &BuildReport{}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := ValidateRawDeck(raw); err != nil {
			b.logger.Error("Skipping deck", "deck", raw.Name, "error", err)
			b.skip(report)
			continue
		}

		deck, err := b.BuildDeck(ctx, raw)
		switch {
		case err == nil:
		case IsMissingSet(err):
			b.logger.Error("Skipping deck", "deck", raw.Name, "error", err)
			b.skip(report)
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, workerpool.ErrClosed):
			return report, err
		default:
			b.logger.Error("Skipping deck", "deck", raw.Name, "error", err)
			b.skip(report)
			continue
		}

		if sink != nil {
			if err := sink(deck); err != nil {
				b.logger.Error("Failed to store deck", "deck", deck.Name, "error", err)
				b.skip(report)
				continue
			}
		}

		report.Built++
		report.Unmatched += len(deck.Unmatched)
	}

	b.logger.Info("Deck build complete",
		"built", report.Built,
		"skipped", report.Skipped,
		"unmatched_cards", report.Unmatched)

	return report, nil
}

func (b *Builder) skip(report *BuildReport) {
	report.Skipped++
	b.metrics.IncrementSkipped()
}
