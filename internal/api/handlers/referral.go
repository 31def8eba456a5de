package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtgjson-decks/internal/api/response"
	"github.com/ramonehamilton/mtgjson-decks/internal/storage/models"
)

// ReferralStore resolves referral short codes.
type ReferralStore interface {
	ResolveReferral(ctx context.Context, shortCode string) (*models.ReferralRecord, error)
}

// ReferralHandler serves referral redirects.
type ReferralHandler struct {
	store ReferralStore
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(store ReferralStore) *ReferralHandler {
	return &ReferralHandler{store: store}
}

// Redirect sends a 302 to the URL stored for the short code.
func (h *ReferralHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	rec, err := h.store.ResolveReferral(r.Context(), shortCode)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if rec == nil {
		response.NotFound(w, fmt.Errorf("unknown referral code %q", shortCode))
		return
	}

	http.Redirect(w, r, rec.URL, http.StatusFound)
}
