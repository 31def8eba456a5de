package decks

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fire & ice!", "FireIce"},
		{"Elves vs. Goblins", "ElvesVsGoblins"},
		{"  spaced   out  ", "SpacedOut"},
		{"Deck_2019", "Deck_2019"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileName_Deterministic(t *testing.T) {
	name := "Planeswalker Deck: Chandra, Pyromaster"
	first := SanitizeFileName(name)
	for i := 0; i < 10; i++ {
		if got := SanitizeFileName(name); got != first {
			t.Fatalf("non-deterministic result %q vs %q", got, first)
		}
	}
	for _, r := range first {
		if !isWordRune(r) {
			t.Errorf("unexpected rune %q in %q", r, first)
		}
	}
}
