package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCatalog writes a catalog file padded past MinCatalogSize.
func writeCatalog(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "AllPrintings.json")
	padding := strings.Repeat(" ", int(MinCatalogSize))
	if err := os.WriteFile(path, []byte(body+padding), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad_Envelope(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), `{
		"meta": {"version": "5.0.0"},
		"data": {
			"war": {"code": "WAR", "cards": [{"name": "Karn's Bastion", "number": "248"}]}
		}
	}`)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	set, ok := cat.Set("WAR")
	if !ok {
		t.Fatal("expected WAR set")
	}
	if len(set.Cards) != 1 || set.Cards[0].Number != "248" {
		t.Errorf("unexpected cards: %+v", set.Cards)
	}
}

func TestLoad_BareMapping(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), `{
		"meta": {"version": "5.0.0"},
		"M20": {"cards": [{"name": "Shock", "number": "160"}]},
		"ELD": {"cards": []}
	}`)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 sets, got %d (%v)", cat.Len(), cat.Codes())
	}
	if _, ok := cat.Set("m20"); !ok {
		t.Error("set lookup should be case-insensitive")
	}
}

func TestLoad_NotReady(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "AllPrintings.json"))
	if !IsNotReady(err) {
		t.Errorf("missing file: expected NotReadyError, got %v", err)
	}

	small := filepath.Join(dir, "small.json")
	if err := os.WriteFile(small, []byte(`{"WAR": {"cards": []}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(small)
	if !IsNotReady(err) {
		t.Errorf("small file: expected NotReadyError, got %v", err)
	}

	empty := writeCatalog(t, t.TempDir(), `{"data": {}}`)
	_, err = Load(empty)
	if !IsNotReady(err) {
		t.Errorf("empty catalog: expected NotReadyError, got %v", err)
	}
}

func TestCatalog_Ready(t *testing.T) {
	var nilCatalog *Catalog
	if !IsNotReady(nilCatalog.Ready()) {
		t.Error("nil catalog should not be ready")
	}

	cat := New(map[string]*Set{"war": {Code: "WAR"}})
	if err := cat.Ready(); err != nil {
		t.Errorf("Ready() = %v", err)
	}
}
