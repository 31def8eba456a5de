package decks

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRawDeck checks that a raw deck has a name, a set code and only
// card entries with a name and a positive count.
func ValidateRawDeck(raw RawDeck) error {
	if err := validate.Struct(raw); err != nil {
		return &ValidationError{DeckName: raw.Name, Err: err}
	}
	return nil
}
