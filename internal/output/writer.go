// Package output writes built decks to the output directory.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
)

// ErrLocked is returned by Lock when another build holds the output directory.
var ErrLocked = errors.New("output directory is locked by another build")

// Options holds configuration for deck output.
type Options struct {
	Dir        string // Root output directory; decks go to Dir/decks
	PrettyJSON bool
}

// Writer persists decks as JSON files.
type Writer struct {
	opts Options
	lock *flock.Flock
}

// NewWriter creates a Writer for the given options.
func NewWriter(opts Options) *Writer {
	return &Writer{
		opts: opts,
		lock: flock.New(filepath.Join(opts.Dir, ".decks.lock")),
	}
}

// DecksDir returns the directory deck files are written to.
func (w *Writer) DecksDir() string {
	return filepath.Join(w.opts.Dir, "decks")
}

// Lock takes an exclusive lock on the output directory for the duration of
// a build. It does not wait: a concurrent build gets ErrLocked.
func (w *Writer) Lock() error {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Unlock releases the output directory lock.
func (w *Writer) Unlock() error {
	return w.lock.Unlock()
}

// document is the on-disk envelope of a deck file.
type document struct {
	Meta decks.Meta  `json:"meta"`
	Data *decks.Deck `json:"data"`
}

// WriteDeck writes deck to DecksDir()/<FileName>_<CODE>.json and returns the
// path. The file is written to a temporary name and renamed into place.
func (w *Writer) WriteDeck(deck *decks.Deck) (string, error) {
	if deck.FileName == "" {
		return "", fmt.Errorf("deck %q has no file name", deck.Name)
	}

	data, err := w.encode(document{Meta: deck.Meta, Data: deck})
	if err != nil {
		return "", fmt.Errorf("failed to marshal deck %q: %w", deck.Name, err)
	}

	dir := w.DecksDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create decks directory: %w", err)
	}

	path := filepath.Join(dir, deck.OutputName())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write deck file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move deck file into place: %w", err)
	}

	return path, nil
}

func (w *Writer) encode(v any) ([]byte, error) {
	if w.opts.PrettyJSON {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
