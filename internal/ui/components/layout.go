package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/ui/resources"
)

// ProductName is shown in the sidebar and page titles.
const ProductName = "DataPulse"

// ContentID is the id of the element holding the page body.
const ContentID = "ui-content"

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// NavItem is a sidebar entry.
type NavItem struct {
	Label string
	Path  string
}

// Nav lists the sidebar entries in display order.
var Nav = []NavItem{
	{Label: "Dashboard", Path: "/"},
	{Label: "Connections", Path: "/connections"},
	{Label: "Schema Explorer", Path: "/explorer"},
	{Label: "AI Chat", Path: "/chat"},
}

// Page describes the shell around a page body.
type Page struct {
	Title       string
	CurrentPath string
	Query       string
	IsDev       bool
}

// Layout renders a full HTML document with the sidebar, header and body.
func Layout(p Page, body templ.Component) templ.Component {
	return Fragment(func(h *HTML) {
		h.Raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Rawf(`<title>%s - %s</title>`, Esc(p.Title), ProductName)
		h.Rawf(`<link rel="stylesheet" href="%s">`, resources.StaticPath(resources.Stylesheet))
		h.Rawf(`<script type="module" src="%s"></script>`, datastarScript)
		h.Raw(`</head><body><div class="app">`)
		h.Render(Sidebar(p.CurrentPath))
		h.Raw(`<div class="main">`)
		h.Render(Header(p.Query))
		h.Rawf(`<main id="%s" class="content">`, ContentID)
		h.Render(body)
		h.Raw(`</main></div></div>`)
		if p.IsDev {
			h.Raw(`<div data-init="@get(&#39;/reload&#39;, {retryMaxCount: 1000})"></div>`)
		}
		h.Raw(`</body></html>`)
	})
}

// Sidebar renders the brand, navigation and settings button.
func Sidebar(currentPath string) templ.Component {
	return Fragment(func(h *HTML) {
		h.Rawf(`<aside class="sidebar"><div class="brand"><span class="brand-mark">DP</span><span class="brand-name">%s</span></div>`, ProductName)
		h.Raw(`<nav class="nav">`)
		for _, item := range Nav {
			if item.Path == currentPath {
				h.Rawf(`<a class="nav-item active" aria-current="page" href="%s">%s</a>`, item.Path, Esc(item.Label))
				continue
			}
			h.Rawf(`<a class="nav-item" href="%s">%s</a>`, item.Path, Esc(item.Label))
		}
		h.Raw(`</nav><div class="sidebar-footer">`)
		h.Render(Button(ButtonProps{Label: "Settings", Variant: ButtonGhost, Size: SizeSm}))
		h.Raw(`</div></aside>`)
	})
}

// Header renders the global search, notification bell and avatar. The search
// submits to the explorer.
func Header(query string) templ.Component {
	return Fragment(func(h *HTML) {
		h.Raw(`<header class="topbar"><form class="global-search" action="/explorer" method="get" role="search">`)
		h.Rawf(`<input class="input" type="search" name="q" placeholder="Search tables, columns, owners..." value="%s">`, Esc(query))
		h.Raw(`</form><div class="topbar-actions">`)
		h.Raw(`<button type="button" class="icon-button" aria-label="Notifications"><span class="bell"></span><span class="dot"></span></button>`)
		h.Raw(`<div class="avatar" aria-label="Account">JD</div></div></header>`)
	})
}
