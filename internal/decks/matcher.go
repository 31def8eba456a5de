package decks

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
)

// faceSeparator marks split and double-faced card names ("Fire // Ice").
const faceSeparator = "//"

// Match resolves one deck card against the cards of its set. A catalog card
// matches when its collector number equals the ref's, or when both carry the
// same multiverse id. Every match is returned, in setCards order, with the
// ref's count and foil flag stamped in. When nothing matches the result is
// empty and a NoMatchWarning describes the ref.
func Match(ref DeckCardRef, setCards []catalog.Card) ([]MatchedCard, *NoMatchWarning) {
	number := comparableNumber(ref)

	var matches []MatchedCard
	for _, card := range setCards {
		byNumber := number != "" && card.Number == number
		if byNumber || card.MultiverseID.Equal(ref.MultiverseID) {
			matches = append(matches, MatchedCard{
				Card:   card,
				Count:  ref.Count,
				IsFoil: ref.Foil,
			})
		}
	}

	if len(matches) == 0 {
		return []MatchedCard{}, &NoMatchWarning{
			Ref:     ref,
			Closest: closestName(ref.Name, setCards),
		}
	}
	return matches, nil
}

// comparableNumber returns the ref's collector number as the catalog spells
// it. Some deck sources suffix split cards with a face letter ("123a"); the
// catalog does not, so for "//" names a trailing letter is dropped. Other
// cards keep their number verbatim.
func comparableNumber(ref DeckCardRef) string {
	number := ref.Number
	if !strings.Contains(ref.Name, faceSeparator) || number == "" {
		return number
	}

	last, size := utf8.DecodeLastRuneInString(number)
	if unicode.IsLetter(last) {
		return number[:len(number)-size]
	}
	return number
}

// closestName returns the name in setCards with the smallest edit distance
// to name, for diagnostics.
func closestName(name string, setCards []catalog.Card) string {
	best := ""
	bestDistance := -1
	target := strings.ToLower(name)
	for _, card := range setCards {
		d := levenshtein.ComputeDistance(target, strings.ToLower(card.Name))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = card.Name, d
		}
	}
	return best
}
