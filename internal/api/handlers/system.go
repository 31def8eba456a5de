package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/mtgjson-decks/internal/api/response"
	"github.com/ramonehamilton/mtgjson-decks/internal/version"
)

// CountStore reports table sizes for the health endpoint.
type CountStore interface {
	ReferralCount(ctx context.Context) (int, error)
}

// SystemHandler handles health requests.
type SystemHandler struct {
	store CountStore
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(store CountStore) *SystemHandler {
	return &SystemHandler{store: store}
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Referrals int    `json:"referrals"`
}

// Health reports liveness and the size of the referral map. A database
// failure answers 503 with status "degraded".
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:  "ok",
		Version: version.GetVersion(),
	}

	n, err := h.store.ReferralCount(r.Context())
	if err != nil {
		status.Status = "degraded"
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status.Referrals = n

	response.JSON(w, http.StatusOK, status)
}
