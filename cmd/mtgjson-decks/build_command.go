package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
	"github.com/ramonehamilton/mtgjson-decks/internal/decksource"
	"github.com/ramonehamilton/mtgjson-decks/internal/metrics"
	"github.com/ramonehamilton/mtgjson-decks/internal/output"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage"
	"github.com/ramonehamilton/mtgjson-decks/internal/workerpool"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration
	var noDB bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch deck listings and join them against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, wait, noDB)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Wait up to this long for the catalog file to appear")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Skip persisting decks to the database")

	return cmd
}

func runBuild(cmd *cobra.Command, ctx *commandContext, wait time.Duration, noDB bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	runCtx := cmd.Context()

	catalogPath := cfg.AllPrintingsPath()
	if wait > 0 {
		waitCtx, cancel := context.WithTimeout(runCtx, wait)
		err := catalog.WaitForFile(waitCtx, catalogPath, catalog.MinCatalogSize)
		cancel()
		if err != nil {
			logger.Error("Catalog did not become ready", "path", catalogPath, "error", err)
			return err
		}
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		logger.Error("Unable to load catalog", "path", catalogPath, "error", err)
		return err
	}
	logger.Info("Catalog loaded", "path", catalogPath, "sets", cat.Len())

	writer := output.NewWriter(output.Options{Dir: cfg.Paths.OutputDir, PrettyJSON: true})
	if err := writer.Lock(); err != nil {
		return err
	}
	defer func() { _ = writer.Unlock() }()

	var store *storage.Service
	if !noDB && cfg.Paths.Database != "" {
		store, err = ctx.openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return err
	}
	client := decksource.NewClient(decksource.Options{
		URL:               cfg.Decks.SourceURL,
		Timeout:           timeout,
		UserAgent:         cfg.Decks.UserAgent,
		RequestsPerSecond: cfg.Decks.RequestsPerSecond,
		Logger:            logger,
	})

	raws, err := client.FetchDecks(runCtx)
	if err != nil {
		return err
	}

	pool := workerpool.New(workerpool.Config{Workers: cfg.WorkerCount(), Logger: logger})
	defer func() { _ = pool.Close() }()

	builder, err := decks.NewBuilder(decks.BuilderConfig{
		Catalog: cat,
		Pool:    pool,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	report, err := builder.BuildAll(runCtx, raws, deckSink(runCtx, writer, store, logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %d decks into %s (%d skipped, %d unmatched cards)\n",
		report.Built, writer.DecksDir(), report.Skipped, report.Unmatched)
	printBuildStats(out, builder.Metrics().GetStats())

	return nil
}

// deckSink writes each deck to disk and, when a store is configured,
// persists it.
func deckSink(ctx context.Context, writer *output.Writer, store *storage.Service, logger *slog.Logger) func(*decks.Deck) error {
	return func(deck *decks.Deck) error {
		path, err := writer.WriteDeck(deck)
		if err != nil {
			return err
		}
		logger.Debug("Deck written", "deck", deck.Name, "path", path)

		if store == nil {
			return nil
		}
		changed, err := store.SaveDeck(ctx, deck)
		if err != nil {
			return err
		}
		if !changed {
			logger.Debug("Deck unchanged", "deck", deck.Name)
		}
		return nil
	}
}

func printBuildStats(w io.Writer, stats *metrics.BuildStats) {
	ms := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

	rows := [][]string{
		{"match", strconv.Itoa(stats.MatchLatency.Count), ms(stats.MatchLatency.Mean), ms(stats.MatchLatency.P50), ms(stats.MatchLatency.P95), ms(stats.MatchLatency.Max)},
		{"deck", strconv.Itoa(stats.DeckLatency.Count), ms(stats.DeckLatency.Mean), ms(stats.DeckLatency.P50), ms(stats.DeckLatency.P95), ms(stats.DeckLatency.Max)},
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Stage", "Count", "Mean ms", "P50 ms", "P95 ms", "Max ms"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(w, "Cards matched: %d, no-match warnings: %d, elapsed: %s\n",
		stats.CardsMatched, stats.NoMatchWarnings, stats.Elapsed)
}
