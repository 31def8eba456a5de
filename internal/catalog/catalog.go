package catalog

import (
	"sort"
	"strings"
)

// Set is one catalog set. Only the fields the deck join reads are decoded.
type Set struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Cards       []Card `json:"cards"`
}

// Catalog maps uppercased set codes to sets. It is built once and only read
// afterwards, so it is safe to share between goroutines without locking.
type Catalog struct {
	sets map[string]*Set
}

// New builds a catalog from sets keyed by set code. Keys are uppercased.
func New(sets map[string]*Set) *Catalog {
	c := &Catalog{sets: make(map[string]*Set, len(sets))}
	for code, set := range sets {
		if set == nil {
			continue
		}
		c.sets[strings.ToUpper(code)] = set
	}
	return c
}

// Set returns the set for code (case-insensitive).
func (c *Catalog) Set(code string) (*Set, bool) {
	if c == nil {
		return nil, false
	}
	set, ok := c.sets[strings.ToUpper(code)]
	return set, ok
}

// Len returns the number of sets.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sets)
}

// Codes returns the set codes in sorted order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.sets))
	for code := range c.sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Ready returns a CatalogNotReadyError when the catalog holds no sets.
func (c *Catalog) Ready() error {
	if c.Len() == 0 {
		return &NotReadyError{Reason: "catalog contains no sets"}
	}
	return nil
}
