// Package dashboard provides the landing page: catalog counters, recent
// connections and the activity timeline.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/", handlers.DashboardPage)
	router.Get("/dashboard/load", handlers.DashboardLoad)
	router.Get("/updates", handlers.DashboardUpdates)

	return nil
}
