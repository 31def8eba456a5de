package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ramonehamilton/mtgjson-decks/internal/config"
)

const testCatalog = `{
	"meta": {"version": "5.2.0"},
	"data": {
		"M10": {
			"code": "M10",
			"cards": [
				{"name": "Llanowar Elves", "number": "189", "multiverseId": "189880", "rarity": "common"},
				{"name": "Forest", "number": "246", "rarity": "common"}
			]
		}
	}
}`

const testListing = `[
	{
		"name": "Elf Army",
		"set_code": "m10",
		"type": "Theme Deck",
		"release_date": "2009-07-17",
		"cards": [
			{"name": "Llanowar Elves", "number": "189", "count": 4, "foil": false},
			{"name": "Forest", "number": "246", "count": 16, "foil": false},
			{"name": "Grizzly Bears", "number": "999", "count": 2, "foil": false}
		],
		"sideboard": []
	},
	{
		"name": "Lost Deck",
		"set_code": "ZZZ",
		"cards": [{"name": "Nothing", "number": "1", "count": 1}],
		"sideboard": []
	}
]`

const testSetFile = `{
	"data": {
		"code": "M10",
		"cards": [
			{
				"name": "Llanowar Elves",
				"purchaseUrls": {"tcgplayer": "https://mtgjson.com/links/abc123"},
				"rawPurchaseUrls": {"tcgplayer": "https://shop.example/product/1?partner=scryfall"}
			}
		]
	}
}`

type cliTestEnv struct {
	baseDir    string
	outputDir  string
	configPath string
}

func setupCLITestEnv(t *testing.T, withDatabase bool) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Chdir(base)
	for _, key := range []string{"MTGJSON_OUTPUT_DIR", "MTGJSON_ALL_PRINTINGS", "MTGJSON_DATABASE", "MTGJSON_DECKS_URL", "MTGJSON_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testListing))
	}))
	t.Cleanup(srv.Close)

	outputDir := filepath.Join(base, "out")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}
	padding := strings.Repeat(" ", 4096)
	if err := os.WriteFile(filepath.Join(outputDir, "AllPrintings.json"), []byte(testCatalog+padding), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = outputDir
	cfg.Decks.SourceURL = srv.URL + "/decks.json"
	cfg.Decks.Workers = 2
	cfg.Log.Level = "error"
	if withDatabase {
		cfg.Paths.Database = filepath.Join(base, "decks.db")
	}

	configPath := filepath.Join(base, "config.toml")
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("save config: %v", err)
	}

	return &cliTestEnv{baseDir: base, outputDir: outputDir, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "mtgjson-decks ")
}

func TestBuildAndListCommands(t *testing.T) {
	env := setupCLITestEnv(t, true)

	out, _, err := runCLI(t, []string{"build"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "Built 1 decks")
	requireContains(t, out, "1 skipped")
	requireContains(t, out, "1 unmatched cards")

	data, err := os.ReadFile(filepath.Join(env.outputDir, "decks", "ElfArmy_M10.json"))
	if err != nil {
		t.Fatalf("expected deck file: %v", err)
	}
	requireContains(t, string(data), `"mainBoard"`)
	requireContains(t, string(data), `"rarity": "common"`)
	if strings.Contains(string(data), "ElfArmy") {
		t.Error("sanitized file name must not be serialized")
	}

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Elf Army")
	requireContains(t, out, "20")
}

func TestBuildCommand_NoDB(t *testing.T) {
	env := setupCLITestEnv(t, true)

	if _, _, err := runCLI(t, []string{"build", "--no-db"}, env.configPath); err != nil {
		t.Fatalf("build --no-db: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.baseDir, "decks.db")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database should not be created with --no-db, stat err = %v", err)
	}
}

func TestBuildCommand_CatalogMissing(t *testing.T) {
	env := setupCLITestEnv(t, false)
	if err := os.Remove(filepath.Join(env.outputDir, "AllPrintings.json")); err != nil {
		t.Fatalf("remove catalog: %v", err)
	}

	_, _, err := runCLI(t, []string{"build"}, env.configPath)
	if err == nil {
		t.Fatal("expected build to fail without a catalog")
	}
	if _, statErr := os.Stat(filepath.Join(env.outputDir, "decks")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no decks should be written when the catalog is not ready")
	}
}

func TestReferralsCommand(t *testing.T) {
	env := setupCLITestEnv(t, true)

	setPath := filepath.Join(env.baseDir, "M10.json")
	if err := os.WriteFile(setPath, []byte(testSetFile), 0o644); err != nil {
		t.Fatalf("write set file: %v", err)
	}

	out, _, err := runCLI(t, []string{"referrals", setPath}, env.configPath)
	if err != nil {
		t.Fatalf("referrals: %v", err)
	}
	requireContains(t, out, "Wrote 1 referral entries")

	data, err := os.ReadFile(filepath.Join(env.outputDir, "ReferralMap.json"))
	if err != nil {
		t.Fatalf("read referral map: %v", err)
	}
	if got := string(data); got != "abc123\thttps://shop.example/product/1?partner=mtgjson\n" {
		t.Errorf("referral map = %q", got)
	}
}

func TestListCommand_NoDatabase(t *testing.T) {
	env := setupCLITestEnv(t, false)

	_, _, err := runCLI(t, []string{"list"}, env.configPath)
	if !errors.Is(err, errNoDatabase) {
		t.Errorf("list error = %v, want errNoDatabase", err)
	}
}
