package decks

import (
	"errors"
	"fmt"
)

// NoMatchWarning reports a deck card that resolved to no catalog card. It is
// informational: the card is left out of its board and the deck build goes
// on.
type NoMatchWarning struct {
	Ref     DeckCardRef
	SetCode string

	// Closest is the catalog card name nearest to Ref.Name, if the set had
	// any cards at all.
	Closest string
}

// Error implements the error interface so warnings can be logged and wrapped.
func (w *NoMatchWarning) Error() string {
	msg := fmt.Sprintf("no matches found for %q (number %q, multiverse id %q) in set %s",
		w.Ref.Name, w.Ref.Number, w.Ref.MultiverseID.String(), w.SetCode)
	if w.Closest != "" {
		msg += fmt.Sprintf("; closest catalog name %q", w.Closest)
	}
	return msg
}

// MissingSetError reports that a deck references a set the catalog does not
// contain. The deck is not built.
type MissingSetError struct {
	DeckName string
	SetCode  string
}

// Error implements the error interface for MissingSetError.
func (e *MissingSetError) Error() string {
	return fmt.Sprintf("deck %q references set %s which is not in the catalog", e.DeckName, e.SetCode)
}

// IsMissingSet returns true if err is or wraps a MissingSetError.
func IsMissingSet(err error) bool {
	var target *MissingSetError
	return errors.As(err, &target)
}

// ValidationError reports a raw deck record that is structurally unusable.
type ValidationError struct {
	DeckName string
	Err      error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid deck record %q: %v", e.DeckName, e.Err)
}

// Unwrap returns the underlying validator error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
