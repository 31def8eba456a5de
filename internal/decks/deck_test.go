package decks

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
)

func TestDeck_JSONUsesCamelCaseAndHidesFileName(t *testing.T) {
	deck := &Deck{
		Code:        "WAR",
		Name:        "Gideon",
		FileName:    "Gideon",
		Type:        "Planeswalker Deck",
		ReleaseDate: "2019-05-03",
		MainBoard:   []MatchedCard{{Card: card("Plains", "250", ""), Count: 10}},
		SideBoard:   []MatchedCard{},
		Meta:        NewMeta(time.Date(2019, 5, 3, 0, 0, 0, 0, time.UTC)),
	}

	data, err := json.Marshal(deck)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))

	for _, key := range []string{"code", "name", "type", "releaseDate", "mainBoard", "sideBoard", "meta"} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "fileName")
	assert.NotContains(t, out, "FileName")
	assert.NotContains(t, out, "unmatched")

	assert.JSONEq(t, `[{"name":"Plains","number":"250","count":10,"isFoil":false}]`, string(out["mainBoard"]))
}

func TestMatchedCard_KeepsCatalogFields(t *testing.T) {
	var c catalog.Card
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Shock","number":"160","rarity":"common","multiverseId":"466905"}`), &c))

	data, err := json.Marshal(MatchedCard{Card: c, Count: 2, IsFoil: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Shock","number":"160","rarity":"common","multiverseId":"466905","count":2,"isFoil":true}`, string(data))

	var back MatchedCard
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 2, back.Count)
	assert.True(t, back.IsFoil)
	assert.Equal(t, "Shock", back.Name)
	assert.NotContains(t, back.Extra, "count")
	assert.Contains(t, back.Extra, "rarity")
}

func TestDeck_OutputNameAndCardCount(t *testing.T) {
	deck := &Deck{
		Code:      "WAR",
		FileName:  "Gideon",
		MainBoard: []MatchedCard{{Count: 10}, {Count: 2}},
		SideBoard: []MatchedCard{{Count: 3}},
	}
	assert.Equal(t, "Gideon_WAR.json", deck.OutputName())
	assert.Equal(t, 15, deck.CardCount())
}

func TestRawDeck_DecodesUpstreamRecord(t *testing.T) {
	data := []byte(`{
		"name": "Fire and Ice",
		"set_code": "inv",
		"set_name": "Invasion",
		"type": "Theme Deck",
		"release_date": "2000-10-02",
		"cards": [
			{"name": "Fire // Ice", "set_code": "apc", "number": "128a", "multiverseid": 27165, "count": 2, "foil": false}
		],
		"sideboard": []
	}`)

	var raw RawDeck
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Cards, 1)

	ref := raw.Cards[0]
	assert.Equal(t, "apc", ref.SetCode)
	assert.Equal(t, "128a", ref.Number)
	assert.Equal(t, "27165", ref.MultiverseID.String())
	assert.Equal(t, 2, ref.Count)
	assert.NoError(t, ValidateRawDeck(raw))
}

func TestValidateRawDeck(t *testing.T) {
	tests := []struct {
		name string
		raw  RawDeck
	}{
		{"missing name", RawDeck{SetCode: "WAR"}},
		{"missing set code", RawDeck{Name: "Deck"}},
		{"zero count", RawDeck{Name: "Deck", SetCode: "WAR", Cards: []DeckCardRef{{Name: "Plains", Count: 0}}}},
		{"unnamed sideboard card", RawDeck{Name: "Deck", SetCode: "WAR", Sideboard: []DeckCardRef{{Count: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRawDeck(tt.raw)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}
