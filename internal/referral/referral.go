// Package referral derives vendor redirect entries from built sets.
package referral

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// PurchaseURLs holds a card's canonical purchase links per vendor service.
type PurchaseURLs struct {
	CardKingdom       string `json:"cardKingdom,omitempty"`
	CardKingdomFoil   string `json:"cardKingdomFoil,omitempty"`
	CardKingdomEtched string `json:"cardKingdomEtched,omitempty"`
	Cardmarket        string `json:"cardmarket,omitempty"`
	TCGPlayer         string `json:"tcgplayer,omitempty"`
	TCGPlayerEtched   string `json:"tcgplayerEtched,omitempty"`
}

// ServiceURL pairs a vendor service name with a URL.
type ServiceURL struct {
	Service string
	URL     string
}

// Entries returns the populated services in declaration order.
func (p PurchaseURLs) Entries() []ServiceURL {
	all := []ServiceURL{
		{"cardKingdom", p.CardKingdom},
		{"cardKingdomFoil", p.CardKingdomFoil},
		{"cardKingdomEtched", p.CardKingdomEtched},
		{"cardmarket", p.Cardmarket},
		{"tcgplayer", p.TCGPlayer},
		{"tcgplayerEtched", p.TCGPlayerEtched},
	}

	entries := all[:0]
	for _, e := range all {
		if e.URL != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// Card is the part of a built card the referral map needs.
type Card struct {
	Name            string            `json:"name"`
	UUID            string            `json:"uuid,omitempty"`
	PurchaseURLs    PurchaseURLs      `json:"purchaseUrls"`
	RawPurchaseURLs map[string]string `json:"rawPurchaseUrls"`
}

// Set is a fully built set.
type Set struct {
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
	Cards []Card `json:"cards"`
}

// Pair maps a short redirect code to its destination URL.
type Pair struct {
	ShortCode string
	URL       string
}

var scryfallPattern = regexp.MustCompile("(?i)" + regexp.QuoteMeta("scryfall"))

// Extract returns one Pair per purchase URL per card, in card order and then
// service order. The short code is the last path segment of the canonical
// URL; the destination is the service's raw URL with "scryfall" (any case)
// rewritten to "mtgjson". Services without a raw URL are skipped. Repeated
// short codes are kept.
func Extract(set *Set) []Pair {
	if set == nil {
		return nil
	}

	var pairs []Pair
	for _, card := range set.Cards {
		for _, entry := range card.PurchaseURLs.Entries() {
			raw, ok := card.RawPurchaseURLs[entry.Service]
			if !ok || raw == "" {
				continue
			}
			pairs = append(pairs, Pair{
				ShortCode: lastSegment(entry.URL),
				URL:       scryfallPattern.ReplaceAllLiteralString(raw, "mtgjson"),
			})
		}
	}
	return pairs
}

func lastSegment(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// LoadSet reads a built set file. Both a bare set object and the
// {"meta": ..., "data": set} envelope are accepted.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read set file: %w", err)
	}

	var envelope struct {
		Data *Set `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode set file %s: %w", path, err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode set file %s: %w", path, err)
	}
	return &set, nil
}
