// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datapulse/internal/api"
	chatFeature "github.com/leapstack-labs/datapulse/internal/ui/features/chat"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	connectionsFeature "github.com/leapstack-labs/datapulse/internal/ui/features/connections"
	dashboardFeature "github.com/leapstack-labs/datapulse/internal/ui/features/dashboard"
	explorerFeature "github.com/leapstack-labs/datapulse/internal/ui/features/explorer"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
	"github.com/leapstack-labs/datapulse/internal/ui/resources"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

// APIPrefix is where the JSON API is mounted.
const APIPrefix = "/api/v1"

// SetupRoutes configures all routes for the UI server. It returns the
// per-session stores for the server to sweep.
func SetupRoutes(router chi.Router, deps common.Deps) ([]workspace.Sweeper, error) {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := dashboardFeature.SetupRoutes(router, deps); err != nil {
		return nil, err
	}

	var sweepers []workspace.Sweeper
	for _, setup := range []func(chi.Router, common.Deps) (workspace.Sweeper, error){
		connectionsFeature.SetupRoutes,
		explorerFeature.SetupRoutes,
		chatFeature.SetupRoutes,
	} {
		sweeper, err := setup(router, deps)
		if err != nil {
			return nil, err
		}
		sweepers = append(sweepers, sweeper)
	}

	// JSON API
	apiHandlers := api.NewHandlers(deps.Catalog, deps.Events(), func() {
		deps.Notifier.Broadcast(notifier.Change{Kind: notifier.ConnectionCreated})
	}, deps.Log())
	router.Mount(APIPrefix, apiHandlers.Routes())

	router.NotFound(notFound)

	return sweepers, nil
}

// notFound answers API paths with a JSON 404 and sends everything else to
// the dashboard.
func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		api.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
