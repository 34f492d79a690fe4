package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// RecentLimit is how many connections the dashboard lists.
const RecentLimit = 5

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// DashboardPage renders the page shell. The content loads through
// DashboardLoad once the browser has the page.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	page := components.Page{Title: "Dashboard", CurrentPath: "/", IsDev: h.deps.IsDev}
	if err := components.Layout(page, DashboardView()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DashboardLoad fetches stats and connections and patches the content. A
// failed fetch renders an error card with a retry button.
func (h *Handlers) DashboardLoad(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data, err := h.fetch(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.deps.Log().Warn("dashboard fetch failed", slog.String("error", err.Error()))
		if err := sse.PatchElementTempl(ErrorContent(err)); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	if err := sse.PatchElementTempl(Content(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// DashboardUpdates is the long-lived SSE endpoint for the dashboard page.
// It does not send initial state; it re-renders the content each time the
// catalog changes.
func (h *Handlers) DashboardUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.deps.Notifier.Subscribe()
	defer h.deps.Notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-updates:
			h.deps.Log().Debug("dashboard refresh", slog.String("change", string(change.Kind)))
			data, err := h.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(Content(data)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// fetch loads stats and connections concurrently and waits for both.
func (h *Handlers) fetch(ctx context.Context) (Data, error) {
	var data Data
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := h.deps.Catalog.GetDashboardStats(gctx)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		data.Stats = stats
		return nil
	})

	g.Go(func() error {
		conns, err := h.deps.Catalog.GetConnections(gctx)
		if err != nil {
			return fmt.Errorf("failed to load connections: %w", err)
		}
		data.Recent = recent(conns)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Data{}, err
	}
	return data, nil
}

func recent(conns []core.DatabaseConnection) []core.DatabaseConnection {
	if len(conns) > RecentLimit {
		return conns[:RecentLimit]
	}
	return conns
}
