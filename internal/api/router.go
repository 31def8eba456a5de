package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtgjson-decks/internal/api/handlers"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	systemHandler := handlers.NewSystemHandler(s.store)
	deckHandler := handlers.NewDeckHandler(s.store)
	referralHandler := handlers.NewReferralHandler(s.store)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", systemHandler.Health)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Get("/{code}/{fileName}", deckHandler.GetDeck)
		})
	})

	// Referral redirects live outside the versioned API so links stay short.
	s.router.Get("/r/{shortCode}", referralHandler.Redirect)
}
