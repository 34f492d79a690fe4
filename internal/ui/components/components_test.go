package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout(t *testing.T) {
	body := render(t, Layout(Page{Title: "Dashboard", CurrentPath: "/", Query: `a"b`}, Text("hello")))

	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<title>Dashboard - DataPulse</title>")
	assert.Contains(t, body, `id="ui-content"`)
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, `value="a&#34;b"`)
	assert.Contains(t, body, "/static/datapulse.css")
	assert.NotContains(t, body, "/reload", "reload hook is dev only")
	assert.NotContains(t, body, "\n")
}

func TestLayout_Dev(t *testing.T) {
	body := render(t, Layout(Page{Title: "Chat", CurrentPath: "/chat", IsDev: true}, nil))
	assert.Contains(t, body, "/reload")
}

func TestSidebar_HighlightsCurrent(t *testing.T) {
	tests := []struct {
		path   string
		active string
	}{
		{"/", `aria-current="page" href="/">Dashboard`},
		{"/connections", `aria-current="page" href="/connections">Connections`},
		{"/explorer", `aria-current="page" href="/explorer">Schema Explorer`},
		{"/chat", `aria-current="page" href="/chat">AI Chat`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			body := render(t, Sidebar(tt.path))
			assert.Contains(t, body, tt.active)
			assert.Equal(t, 1, strings.Count(body, "aria-current"))
			assert.Contains(t, body, "Settings")
		})
	}
}

func TestHeader_SearchTargetsExplorer(t *testing.T) {
	body := render(t, Header(""))
	assert.Contains(t, body, `action="/explorer"`)
	assert.Contains(t, body, `name="q"`)
	assert.Contains(t, body, "Notifications")
}

func TestButton(t *testing.T) {
	tests := []struct {
		name    string
		props   ButtonProps
		want    []string
		notWant []string
	}{
		{
			name:    "defaults",
			props:   ButtonProps{Label: "Go"},
			want:    []string{`type="button"`, "btn-primary", "btn-md", ">Go</button>"},
			notWant: []string{"disabled", "spinner"},
		},
		{
			name:  "loading disables",
			props: ButtonProps{Label: "Connect Database", Loading: true, Variant: ButtonSecondary, Size: SizeLg},
			want:  []string{"disabled", "spinner", "btn-secondary", "btn-lg", `aria-busy="true"`},
		},
		{
			name:  "attributes are escaped",
			props: ButtonProps{Label: "Open", Variant: ButtonGhost, Attrs: []Attr{On("click", "@post('/x')")}},
			want:  []string{`data-on:click="@post(&#39;/x&#39;)"`, "btn-ghost"},
		},
		{
			name:  "label is escaped",
			props: ButtonProps{Label: "<b>", Variant: ButtonDanger},
			want:  []string{"&lt;b&gt;", "btn-danger"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, Button(tt.props))
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, body, nw)
			}
		})
	}
}

func TestInput(t *testing.T) {
	body := render(t, Input(InputProps{
		ID:          "conn-host",
		Label:       "Host",
		Placeholder: "hostname",
		Error:       "Host is required",
		Attrs:       []Attr{Bind("connHost")},
	}))

	assert.Contains(t, body, `<label for="conn-host">Host</label>`)
	assert.Contains(t, body, `placeholder="hostname"`)
	assert.Contains(t, body, "input-error")
	assert.Contains(t, body, `<p class="field-error">Host is required</p>`)
	assert.Contains(t, body, " data-bind:connHost>")
}

func TestBadgeCardAlert(t *testing.T) {
	assert.Equal(t, `<span class="badge badge-success">connected</span>`, render(t, Badge(BadgeSuccess, "connected")))
	assert.Contains(t, render(t, Badge("", "x")), "badge-default")

	card := render(t, Card("Recent Activity", Text("body")))
	assert.Contains(t, card, `<h3 class="card-title">Recent Activity</h3>`)
	assert.Contains(t, card, "body")
	assert.NotContains(t, render(t, Card("", Text("x"))), "card-header")

	assert.Contains(t, render(t, Alert("Failed to connect: boom")), `role="alert"`)
}
