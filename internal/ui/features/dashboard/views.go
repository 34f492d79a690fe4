package dashboard

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// ContentID is the element the load and update streams patch.
const ContentID = "dashboard-content"

// Data is everything the dashboard content shows.
type Data struct {
	Stats  core.DashboardStats
	Recent []core.DatabaseConnection
}

// DashboardView renders the page body with a loading placeholder and the
// hooks that fetch content and subscribe to updates.
func DashboardView() templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Raw(`<div class="page"><div class="page-header"><h1>Dashboard</h1><p class="muted">Overview of your data landscape.</p></div>`)
		h.Rawf(`<div id="%s" class="loading" data-init="@get(&#39;/dashboard/load&#39;)"><span class="spinner"></span> Loading dashboard...</div>`, ContentID)
		h.Raw(`<div data-init="@get(&#39;/updates&#39;)"></div></div>`)
	})
}

// Content renders the tiles, recent connections and activity timeline.
func Content(d Data) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<div id="%s">`, ContentID)
		h.Render(Tiles(d.Stats))
		h.Raw(`<div class="grid grid-2">`)
		h.Render(components.Card("Recent Connections", recentList(d.Recent)))
		h.Render(components.Card("Recent Activity", activity()))
		h.Raw(`</div></div>`)
	})
}

// Tiles renders the four counters.
func Tiles(s core.DashboardStats) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Raw(`<div id="dashboard-stats" class="grid grid-4">`)
		tile(h, "Total Connections", common.Itoa(s.TotalConnections), "+1 from last week")
		tile(h, "Total Tables", common.Itoa(s.TotalTables), "Across all connections")
		tile(h, "Total Rows Processed", common.FormatCount(s.TotalRows), "Estimated volume")
		tile(h, "System Health", common.Itoa(s.HealthScore)+"%", "Operational")
		h.Raw(`</div>`)
	})
}

func tile(h *components.HTML, title, value, note string) {
	h.Rawf(`<div class="card tile"><p class="tile-title">%s</p><p class="tile-value">%s</p><p class="tile-note">%s</p></div>`,
		components.Esc(title), components.Esc(value), components.Esc(note))
}

func recentList(conns []core.DatabaseConnection) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		if len(conns) == 0 {
			h.Raw(`<p class="muted">No connections yet.</p>`)
			return
		}
		h.Raw(`<ul class="list">`)
		for _, c := range conns {
			h.Rawf(`<li class="list-row"><div><p class="strong">%s</p><p class="muted small">%s</p></div>`,
				components.Esc(c.Name), components.Esc(c.Host))
			h.Render(components.Badge(components.BadgeVariant(common.StatusBadge(c.Status)), string(c.Status)))
			h.Raw(`</li>`)
		}
		h.Raw(`</ul>`)
	})
}

func activity() templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Raw(`<ol class="timeline">`)
		for i := 0; i < 3; i++ {
			h.Rawf(`<li class="timeline-item"><p class="strong">Schema Sync <span class="muted small">10:3%d AM</span></p><p class="muted small">Updated metadata for SALES_DB. Found 2 new columns.</p></li>`, i)
		}
		h.Raw(`</ol>`)
	})
}

// ErrorContent renders a recoverable error card in place of the content.
func ErrorContent(err error) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<div id="%s">`, ContentID)
		h.Render(components.Card("Dashboard unavailable", components.Fragment(func(h *components.HTML) {
			h.Rawf(`<p class="muted">%s</p>`, components.Esc(fmt.Sprintf("Could not load the dashboard: %v", err)))
			h.Render(components.Button(components.ButtonProps{
				Label:   "Retry",
				Variant: components.ButtonOutline,
				Attrs:   []components.Attr{components.On("click", "@get('/dashboard/load')")},
			}))
		})))
		h.Raw(`</div>`)
	})
}
