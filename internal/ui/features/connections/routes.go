// Package connections provides the connections page: the connection list,
// its search box and the add-connection form.
package connections

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

// SetupRoutes configures routes for the connections feature and returns the
// per-session state store so the server can sweep it.
func SetupRoutes(router chi.Router, deps common.Deps) (workspace.Sweeper, error) {
	handlers := NewHandlers(deps)

	router.Route("/connections", func(r chi.Router) {
		r.Get("/", handlers.ConnectionsPage)
		r.Get("/load", handlers.ConnectionsLoad)
		r.Post("/open", handlers.OpenForm)
		r.Post("/close", handlers.CloseForm)
		r.Post("/submit", handlers.SubmitForm)
		r.Post("/search", handlers.Search)
	})

	return handlers.states, nil
}
