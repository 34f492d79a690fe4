// Package docs renders table documentation. The explorer shows it as HTML
// and the CLI prints the same document converted to Markdown.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/a-h/templ"

	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Narrative is the generated commentary appended to every table description.
const Narrative = "This table serves as the central repository for entity information. " +
	"It is joined frequently with ORDERS for billing analysis. Data quality is generally high, " +
	"though email validation failures occur in 0.5% of records."

// Owner is the owning team shown for every table.
const Owner = "Data Engineering Team"

// Tags are the classification tags shown for every table.
var Tags = []string{"Core", "PII", "Validated"}

// Description returns the table's description or a placeholder.
func Description(t core.TableSummary) string {
	if strings.TrimSpace(t.Description) == "" {
		return "No description available."
	}
	return t.Description
}

// Attributes returns the column markers: PK, FK and NULL.
func Attributes(c core.ColumnDetail) []string {
	var attrs []string
	if c.IsPrimaryKey {
		attrs = append(attrs, "PK")
	}
	if c.IsForeignKey {
		attrs = append(attrs, "FK")
	}
	if c.IsNullable {
		attrs = append(attrs, "NULL")
	}
	return attrs
}

// Overview renders the description and generated commentary.
func Overview(t core.TableSummary) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<p>%s</p><p>%s</p>`, components.Esc(Description(t)), components.Esc(Narrative))
	})
}

// Page renders the full documentation for a table.
func Page(d core.TableDetail) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Rawf(`<article><h1>%s</h1>`, components.Esc(d.QualifiedName()))
		h.Render(Overview(d.TableSummary))
		h.Rawf(`<p><strong>Owner:</strong> %s</p>`, components.Esc(Owner))
		h.Rawf(`<p><strong>Tags:</strong> %s</p>`, components.Esc(strings.Join(Tags, ", ")))
		h.Rawf(`<p><strong>Rows:</strong> %d <strong>Columns:</strong> %d</p>`, d.RowCount, len(d.Columns))
		if d.HealthScore != nil {
			h.Rawf(`<p><strong>Health score:</strong> %d%%</p>`, *d.HealthScore)
		}
		h.Render(ColumnTable(d.Columns))
		h.Raw(`</article>`)
	})
}

// ColumnTable renders the column grid.
func ColumnTable(cols []core.ColumnDetail) templ.Component {
	return components.Fragment(func(h *components.HTML) {
		h.Raw(`<table class="table"><thead><tr><th>Column Name</th><th>Type</th><th>Attributes</th><th>Description</th></tr></thead><tbody>`)
		for _, c := range cols {
			h.Rawf(`<tr><td class="mono">%s</td><td class="mono muted">%s</td><td>`, components.Esc(c.Name), components.Esc(c.Type))
			for i, a := range Attributes(c) {
				if i > 0 {
					h.Text(", ")
				}
				h.Render(components.Badge(attributeBadge(a), a))
			}
			h.Rawf(`</td><td>%s</td></tr>`, components.Esc(c.Description))
		}
		h.Raw(`</tbody></table>`)
	})
}

func attributeBadge(attr string) components.BadgeVariant {
	if attr == "PK" {
		return components.BadgeDefault
	}
	return components.BadgeOutline
}

// Markdown converts the documentation page to Markdown.
func Markdown(ctx context.Context, d core.TableDetail) (string, error) {
	var buf bytes.Buffer
	if err := Page(d).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render documentation: %w", err)
	}
	conv := converter.NewConverter(converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	))
	md, err := conv.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert documentation: %w", err)
	}
	return md, nil
}
