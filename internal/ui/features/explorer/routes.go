// Package explorer provides the schema explorer: a searchable table list
// and a tabbed detail pane.
package explorer

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

// SetupRoutes configures routes for the explorer feature and returns the
// per-session state store so the server can sweep it.
func SetupRoutes(router chi.Router, deps common.Deps) (workspace.Sweeper, error) {
	handlers := NewHandlers(deps)

	router.Route("/explorer", func(r chi.Router) {
		r.Get("/", handlers.ExplorerPage)
		r.Get("/load", handlers.ExplorerLoad)
		r.Post("/select/{id}", handlers.SelectTable)
		r.Post("/tab/{tab}", handlers.SelectTab)
		r.Post("/search", handlers.Search)
	})

	return handlers.states, nil
}
