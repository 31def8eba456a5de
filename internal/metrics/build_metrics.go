package metrics

import (
	"sync/atomic"
	"time"
)

// BuildMetrics tracks a deck build run. Safe for concurrent use by the
// match workers.
type BuildMetrics struct {
	MatchLatency *Histogram
	DeckLatency  *Histogram

	DecksBuilt     atomic.Uint64
	DecksSkipped   atomic.Uint64
	CardsMatched   atomic.Uint64
	NoMatchWarning atomic.Uint64

	startTime time.Time
}

// NewBuildMetrics creates a new metrics collector.
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		MatchLatency: NewHistogram(50000),
		DeckLatency:  NewHistogram(5000),
		startTime:    time.Now(),
	}
}

// RecordMatch records one card match and the number of catalog cards it produced.
func (m *BuildMetrics) RecordMatch(d time.Duration, matched int) {
	m.MatchLatency.Record(d)
	m.CardsMatched.Add(uint64(matched))
	if matched == 0 {
		m.NoMatchWarning.Add(1)
	}
}

// RecordDeck records a successfully built deck.
func (m *BuildMetrics) RecordDeck(d time.Duration) {
	m.DeckLatency.Record(d)
	m.DecksBuilt.Add(1)
}

// IncrementSkipped counts a deck that could not be built.
func (m *BuildMetrics) IncrementSkipped() {
	m.DecksSkipped.Add(1)
}

// BuildStats is a point-in-time snapshot of BuildMetrics.
type BuildStats struct {
	MatchLatency LatencyStats `json:"match_latency"`
	DeckLatency  LatencyStats `json:"deck_latency"`

	DecksBuilt      uint64 `json:"decks_built"`
	DecksSkipped    uint64 `json:"decks_skipped"`
	CardsMatched    uint64 `json:"cards_matched"`
	NoMatchWarnings uint64 `json:"no_match_warnings"`

	Elapsed string `json:"elapsed"`
}

// GetStats returns a snapshot of the current statistics.
func (m *BuildMetrics) GetStats() *BuildStats {
	return &BuildStats{
		MatchLatency:    m.MatchLatency.Summary(),
		DeckLatency:     m.DeckLatency.Summary(),
		DecksBuilt:      m.DecksBuilt.Load(),
		DecksSkipped:    m.DecksSkipped.Load(),
		CardsMatched:    m.CardsMatched.Load(),
		NoMatchWarnings: m.NoMatchWarning.Load(),
		Elapsed:         time.Since(m.startTime).Round(time.Millisecond).String(),
	}
}
