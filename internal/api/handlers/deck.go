// Package handlers implements the HTTP handlers of the deck API.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtgjson-decks/internal/api/response"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/models"
)

// DeckStore is the read side of deck persistence.
type DeckStore interface {
	ListDecks(ctx context.Context) ([]*models.DeckRecord, error)
	GetDeck(ctx context.Context, code, fileName string) (*models.DeckRecord, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	store DeckStore
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(store DeckStore) *DeckHandler {
	return &DeckHandler{store: store}
}

// DeckSummary is one entry of the deck listing.
type DeckSummary struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	FileName    string    `json:"fileName"`
	Type        string    `json:"type"`
	ReleaseDate string    `json:"releaseDate"`
	CardCount   int       `json:"cardCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetDecks returns every stored deck. An optional ?code= filter restricts
// the listing to one set.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListDecks(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	code := strings.ToUpper(r.URL.Query().Get("code"))

	summaries := make([]DeckSummary, 0, len(records))
	for _, rec := range records {
		if code != "" && rec.Code != code {
			continue
		}
		summaries = append(summaries, DeckSummary{
			Code:        rec.Code,
			Name:        rec.Name,
			FileName:    rec.FileName,
			Type:        rec.Type,
			ReleaseDate: rec.ReleaseDate,
			CardCount:   rec.CardCount,
			UpdatedAt:   rec.UpdatedAt,
		})
	}

	response.List(w, summaries, len(summaries))
}

// GetDeck returns the full body of one deck.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	fileName := strings.TrimSuffix(chi.URLParam(r, "fileName"), ".json")

	rec, err := h.store.GetDeck(r.Context(), code, fileName)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if rec == nil {
		response.NotFound(w, fmt.Errorf("deck %s/%s not found", code, fileName))
		return
	}

	response.Success(w, json.RawMessage(rec.Body))
}
