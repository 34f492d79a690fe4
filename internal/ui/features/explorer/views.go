package explorer

import (
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/docs"
	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Element ids patched by the handlers.
const (
	ListID   = "table-list"
	DetailID = "table-detail"
)

// PageView renders the page body for a fresh mount.
func PageView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		encoded, _ := json.Marshal(map[string]string{"tableSearch": s.Query})

		h.Rawf(`<div class="page explorer" data-signals="%s"><aside class="explorer-list">`, components.Esc(string(encoded)))
		h.Render(components.Input(components.InputProps{
			ID:          "table-search",
			Type:        "search",
			Placeholder: "Search tables...",
			Value:       s.Query,
			Attrs: []components.Attr{
				components.Bind("tableSearch"),
				components.On("input__debounce.200ms", "@post('/explorer/search')"),
			},
		}))
		h.Render(ListView(s))
		h.Raw(`</aside><section class="explorer-detail">`)
		h.Render(DetailView(s))
		h.Raw(`</section></div>`)
	})
}

// ListView renders the table list, or its loading state.
func ListView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		if s.Loading {
			h.Rawf(`<div id="%s" class="loading" data-init="@get(&#39;/explorer/load?gen=%d&#39;)"><span class="spinner"></span> Loading tables...</div>`,
				ListID, s.Generation)
			return
		}

		h.Rawf(`<nav id="%s" class="table-list">`, ListID)
		if s.LoadErr != "" {
			h.Render(components.Alert("Failed to load tables: " + s.LoadErr))
		} else if len(s.Visible) == 0 {
			h.Raw(`<p class="empty muted">No tables found.</p>`)
		}
		for _, t := range s.Visible {
			class := "table-item"
			if t.ID == s.Selected {
				class += " active"
			}
			h.Rawf(`<button type="button" class="%s" data-on:click="%s"><span class="strong">%s</span><span class="muted small">%s</span></button>`,
				class,
				components.Esc("@post('/explorer/select/"+t.ID+"')"),
				components.Esc(t.Name),
				components.Esc(t.Schema))
		}
		h.Raw(`</nav>`)
	})
}

// DetailView renders the selected table's header, tabs and tab content.
func DetailView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<div id="%s">`, DetailID)
		defer h.Raw(`</div>`)

		summary, selected := s.SelectedSummary()
		switch {
		case s.Loading:
			return
		case !selected:
			h.Raw(`<div class="empty muted">Select a table to view details</div>`)
			return
		}

		header(h, summary)

		switch {
		case s.DetailLoading:
			h.Raw(`<div class="loading"><span class="spinner"></span> Loading table details...</div>`)
			return
		case s.DetailErr != "":
			h.Render(components.Alert("Failed to load table details: " + s.DetailErr))
			return
		case s.Detail == nil:
			return
		}

		h.Raw(`<div class="tabs" role="tablist">`)
		for _, tab := range Tabs {
			class := "tab"
			if tab == s.Tab {
				class += " active"
			}
			h.Rawf(`<button type="button" role="tab" class="%s" data-on:click="%s">%s</button>`,
				class, components.Esc("@post('/explorer/tab/"+string(tab)+"')"), tab)
		}
		h.Raw(`</div><div class="tab-panel">`)
		switch s.Tab {
		case TabColumns:
			h.Render(components.Card("", docs.ColumnTable(s.Detail.Columns)))
		case TabPreview:
			h.Raw(`<div class="card empty muted">Data preview requires active database connection.</div>`)
		default:
			overview(h, *s.Detail)
		}
		h.Raw(`</div>`)
	})
}

func header(h *components.HTML, t core.TableSummary) {
	h.Rawf(`<header class="detail-header"><div><h2>%s `, components.Esc(t.Name))
	h.Render(components.Badge(components.BadgeOutline, t.Schema))
	h.Rawf(`</h2><p class="muted small">%d columns &middot; %s rows</p></div>`, t.ColumnCount, common.FormatCount(t.RowCount))
	health := "N/A"
	if t.HealthScore != nil {
		health = common.Itoa(*t.HealthScore) + "%"
	}
	h.Rawf(`<div class="health"><p class="muted small">Health Score</p><p class="tile-value">%s</p></div></header>`, health)
}

func overview(h *components.HTML, d core.TableDetail) {
	h.Raw(`<div class="grid grid-3"><div class="span-2">`)
	h.Render(components.Card("AI Documentation", docs.Overview(d.TableSummary)))
	h.Raw(`</div><div class="stack">`)
	h.Render(components.Card("Tags", components.Fragment(func(h *components.HTML) {
		for _, tag := range docs.Tags {
			h.Render(components.Badge(components.BadgeSecondary, tag))
		}
	})))
	h.Render(components.Card("Owner", components.Text(docs.Owner)))
	h.Rawf(`<p class="muted small">%s</p>`, components.Esc(d.QualifiedName()))
	h.Raw(`</div></div>`)
}
