// Package components holds the layout shell and UI primitives shared by the
// feature pages.
//
// Markup is written without line breaks so a fragment fits on one SSE data
// line.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to a component's writer and keeps the first error.
type HTML struct {
	ctx context.Context
	w   io.Writer
	err error
}

// Fragment turns a writer function into a component.
func Fragment(fn func(h *HTML)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &HTML{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Raw writes s unescaped.
func (h *HTML) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Rawf writes formatted markup. Untrusted arguments must go through Esc.
func (h *HTML) Rawf(format string, args ...any) {
	h.Raw(fmt.Sprintf(format, args...))
}

// Text writes s as escaped text.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Render writes a child component.
func (h *HTML) Render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// Err returns the first write error.
func (h *HTML) Err() error { return h.err }

// Esc escapes s for text or a quoted attribute value.
func Esc(s string) string {
	return templ.EscapeString(s)
}

// Attr is a single HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// On returns a datastar event attribute, e.g. On("click", "@post('/x')").
func On(event, expr string) Attr {
	return Attr{Name: "data-on:" + event, Value: expr}
}

// Bind returns a datastar two-way binding attribute for signal.
func Bind(signal string) Attr {
	return Attr{Name: "data-bind:" + signal}
}

func writeAttrs(h *HTML, attrs []Attr) {
	for _, a := range attrs {
		if a.Value == "" {
			h.Rawf(" %s", a.Name)
			continue
		}
		h.Rawf(` %s="%s"`, a.Name, Esc(a.Value))
	}
}
