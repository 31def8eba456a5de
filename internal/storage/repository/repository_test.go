package repository_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtgjson-decks/internal/catalog"
	"github.com/ramonehamilton/mtgjson-decks/internal/decks"
	"github.com/ramonehamilton/mtgjson-decks/internal/referral"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/repository"
)

// setupTestDB opens a migrated database in a temporary directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := storage.Open(storage.DefaultConfig(filepath.Join(t.TempDir(), "decks.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db.Conn()
}

func testDeck(name string, count int) *decks.Deck {
	return &decks.Deck{
		Code:        "M10",
		Name:        name,
		FileName:    decks.SanitizeFileName(name),
		Type:        "Theme Deck",
		ReleaseDate: "2009-07-17",
		MainBoard: []decks.MatchedCard{
			{Card: catalog.Card{Name: "Llanowar Elves", Number: "189"}, Count: count},
		},
		SideBoard: []decks.MatchedCard{},
		Meta:      decks.Meta{Date: "2024-01-01", Version: "1.0.0+20240101"},
	}
}

func TestDeckRepository_SaveAndGet(t *testing.T) {
	repo := repository.NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	deck := testDeck("Elf Army", 4)
	changed, err := repo.Save(ctx, deck)
	require.NoError(t, err)
	assert.True(t, changed)

	rec, err := repo.Get(ctx, "M10", "ElfArmy")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Elf Army", rec.Name)
	assert.Equal(t, 4, rec.CardCount)
	assert.Len(t, rec.ContentHash, 64)

	var body decks.Deck
	require.NoError(t, json.Unmarshal(rec.Body, &body))
	require.Len(t, body.MainBoard, 1)
	assert.Equal(t, "Llanowar Elves", body.MainBoard[0].Name)
	assert.Equal(t, 4, body.MainBoard[0].Count)
}

func TestDeckRepository_Get_NotFound(t *testing.T) {
	repo := repository.NewDeckRepository(setupTestDB(t))

	rec, err := repo.Get(context.Background(), "M10", "Nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDeckRepository_SaveSkipsUnchanged(t *testing.T) {
	repo := repository.NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Save(ctx, testDeck("Elf Army", 4))
	require.NoError(t, err)

	// A rebuild on another day only changes the metadata.
	rebuilt := testDeck("Elf Army", 4)
	rebuilt.Meta = decks.Meta{Date: "2024-02-01", Version: "1.0.0+20240201"}
	changed, err := repo.Save(ctx, rebuilt)
	require.NoError(t, err)
	assert.False(t, changed)

	first, err := repo.Get(ctx, "M10", "ElfArmy")
	require.NoError(t, err)

	changed, err = repo.Save(ctx, testDeck("Elf Army", 2))
	require.NoError(t, err)
	assert.True(t, changed)

	updated, err := repo.Get(ctx, "M10", "ElfArmy")
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID, "upsert keeps the row id")
	assert.NotEqual(t, first.ContentHash, updated.ContentHash)
	assert.Equal(t, 2, updated.CardCount)
}

func TestDeckRepository_List(t *testing.T) {
	repo := repository.NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Zombie Horde", "Elf Army"} {
		_, err := repo.Save(ctx, testDeck(name, 1))
		require.NoError(t, err)
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ElfArmy", records[0].FileName)
	assert.Equal(t, "ZombieHorde", records[1].FileName)
	assert.Empty(t, records[0].Body)
}

func TestContentHash_IgnoresMeta(t *testing.T) {
	a := testDeck("Elf Army", 4)
	b := testDeck("Elf Army", 4)
	b.Meta.Date = "2030-12-31"

	ha, err := repository.ContentHash(a)
	require.NoError(t, err)
	hb, err := repository.ContentHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Equal(t, "2024-01-01", a.Meta.Date, "hashing must not modify the deck")
}

func TestReferralRepository_Upsert(t *testing.T) {
	repo := repository.NewReferralRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Upsert(ctx, []referral.Pair{
		{ShortCode: "abc", URL: "https://shop.example/mtgjson/1"},
		{ShortCode: "def", URL: "https://shop.example/mtgjson/2"},
		{ShortCode: "abc", URL: "https://shop.example/mtgjson/3"},
	})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "https://shop.example/mtgjson/3", rec.URL, "later pair wins")

	missing, err := repo.Get(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReferralRepository_UpsertEmpty(t *testing.T) {
	repo := repository.NewReferralRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(context.Background(), nil))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
