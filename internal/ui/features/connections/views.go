package connections

import (
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/dsn"
	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Element ids patched by the handlers.
const (
	ListID  = "connections-list"
	ModalID = "connection-modal"
)

// PageView renders the page body for a fresh mount.
func PageView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		signals := DefaultSignals()
		signals["search"] = s.Query
		encoded, _ := json.Marshal(signals)

		h.Rawf(`<div class="page" data-signals="%s">`, components.Esc(string(encoded)))
		h.Raw(`<div class="page-header row"><div><h1>Connections</h1><p class="muted">Manage your database connections</p></div>`)
		h.Render(components.Button(components.ButtonProps{
			Label: "Add Connection",
			Attrs: []components.Attr{components.On("click", "@post('/connections/open')")},
		}))
		h.Raw(`</div><div class="toolbar">`)
		h.Render(components.Input(components.InputProps{
			ID:          "connections-search",
			Type:        "search",
			Placeholder: "Search connections...",
			Attrs: []components.Attr{
				components.Bind("search"),
				components.On("input__debounce.200ms", "@post('/connections/search')"),
			},
		}))
		h.Raw(`</div>`)
		h.Render(ListView(s))
		h.Render(ModalView(s))
		h.Raw(`</div>`)
	})
}

// ListView renders the connection cards, or the loading and empty states.
func ListView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		if s.Loading {
			h.Rawf(`<div id="%s" class="loading" data-init="@get(&#39;/connections/load?gen=%d&#39;)"><span class="spinner"></span> Loading connections...</div>`,
				ListID, s.Generation)
			return
		}

		h.Rawf(`<div id="%s" class="grid grid-3">`, ListID)
		if s.LoadErr != "" {
			h.Render(components.Alert("Failed to load connections: " + s.LoadErr))
		}
		if len(s.Visible) == 0 && s.LoadErr == "" {
			h.Raw(`<p class="empty muted">No connections found.</p>`)
		}
		for _, c := range s.Visible {
			h.Render(card(c))
		}
		h.Raw(`</div>`)
	})
}

func card(c core.DatabaseConnection) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<article class="card connection-card" id="connection-%s"><div class="card-body">`, components.Esc(c.ID))
		h.Rawf(`<div class="row"><h3 class="card-title">%s</h3>`, components.Esc(c.Name))
		h.Render(components.Badge(components.BadgeVariant(common.StatusBadge(c.Status)), string(c.Status)))
		h.Raw(`</div>`)
		h.Rawf(`<p class="muted small">%s &middot; %s</p>`, components.Esc(c.Type.Label()), components.Esc(c.Host))
		if d, err := dsn.Build(dsn.FromConnection(c)); err == nil {
			h.Rawf(`<code class="dsn">%s</code>`, components.Esc(d.Redacted()))
		}
		h.Raw(`<p class="muted small">Last synced: Just now</p></div></article>`)
	})
}

// ModalView renders the add-connection form, or an empty placeholder when
// the form is closed.
func ModalView(s Snapshot) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		if s.Form == FormClosed {
			h.Rawf(`<div id="%s"></div>`, ModalID)
			return
		}
		submitting := s.Form == FormSubmitting

		h.Rawf(`<div id="%s" class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true" aria-labelledby="connection-modal-title">`, ModalID)
		h.Raw(`<header class="modal-header"><h2 id="connection-modal-title">Add New Connection</h2></header>`)
		if s.Alert != "" {
			h.Render(components.Alert(s.Alert))
		}
		h.Rawf(`<form class="form" data-on:submit__prevent="%s">`, components.Esc("@post('/connections/submit')"))

		h.Raw(`<div class="field"><label for="conn-type">Database Type</label>`)
		h.Raw(`<select id="conn-type" class="input" data-bind:connType`)
		if submitting {
			h.Raw(" disabled")
		}
		h.Raw(">")
		for _, t := range core.SourceTypes {
			h.Rawf(`<option value="%s">%s</option>`, t, components.Esc(t.Label()))
		}
		h.Raw(`</select>`)
		if msg := s.FieldErrors["type"]; msg != "" {
			h.Rawf(`<p class="field-error">%s</p>`, components.Esc(msg))
		}
		h.Raw(`</div>`)

		field := func(id, label, typ, placeholder, signal, key string) {
			h.Render(components.Input(components.InputProps{
				ID:          id,
				Label:       label,
				Type:        typ,
				Placeholder: placeholder,
				Error:       s.FieldErrors[key],
				Disabled:    submitting,
				Attrs:       []components.Attr{components.Bind(signal)},
			}))
		}
		field("conn-name", "Connection Name", "text", "e.g. Production DB", "connName", "name")
		h.Raw(`<div class="grid grid-2">`)
		field("conn-host", "Host", "text", "hostname", "connHost", "host")
		field("conn-port", "Port", "text", "5432", "connPort", "port")
		h.Raw(`</div>`)
		field("conn-database", "Database Name", "text", "db_name", "connDatabase", "database")
		h.Raw(`<div class="grid grid-2">`)
		field("conn-username", "Username", "text", "user", "connUsername", "username")
		field("conn-password", "Password", "password", "", "connPassword", "password")
		h.Raw(`</div>`)

		h.Raw(`<footer class="modal-footer">`)
		h.Render(components.Button(components.ButtonProps{
			Label:    "Cancel",
			Variant:  components.ButtonGhost,
			Disabled: submitting,
			Attrs:    []components.Attr{components.On("click", "@post('/connections/close')")},
		}))
		h.Render(components.Button(components.ButtonProps{
			Label:   "Connect Database",
			Type:    "submit",
			Loading: submitting,
		}))
		h.Raw(`</footer></form></div></div>`)
	})
}
