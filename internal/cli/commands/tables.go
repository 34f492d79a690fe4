package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/datapulse/internal/cli/output"
	"github.com/leapstack-labs/datapulse/internal/docs"
	"github.com/leapstack-labs/datapulse/internal/search"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

var countPrinter = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

func formatHealth(h *int) string {
	if h == nil {
		return "N/A"
	}
	return strconv.Itoa(*h) + "%"
}

// NewTablesCommand creates the tables command group.
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Browse cataloged tables and their documentation",
	}

	cmd.AddCommand(newTablesListCommand())
	cmd.AddCommand(newTablesShowCommand())
	return cmd
}

func newTablesListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged tables",
		Example: `  # List every table
  datapulse tables list

  # Tables whose name or schema contains "sales"
  datapulse tables list --search sales -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTablesList(cmd, query)
		},
	}

	cmd.Flags().StringVarP(&query, "search", "s", "", "Filter by table or schema name (case-insensitive)")
	return cmd
}

func runTablesList(cmd *cobra.Command, query string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	tables, err := cc.Catalog.GetTables(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}
	tables = search.Tables(tables, query)

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(tables)
	}

	r.Header(1, fmt.Sprintf("Tables (%d)", len(tables)))
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{
			t.ID,
			t.QualifiedName(),
			formatCount(t.RowCount),
			strconv.Itoa(t.ColumnCount),
			formatHealth(t.HealthScore),
		})
	}
	r.Table([]string{"ID", "Table", "Rows", "Columns", "Health"}, rows)
	return nil
}

func newTablesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a table's documentation and columns",
		Long: `Show the generated documentation for a table.

Text output shows a summary and the column grid; markdown output is the same
document the schema explorer renders, converted to Markdown.`,
		Example: `  datapulse tables show t1
  datapulse tables show t2 -o markdown > ORDERS.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTablesShow(cmd, args[0])
		},
	}
}

func runTablesShow(cmd *cobra.Command, id string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	detail, err := cc.Catalog.GetTableDetail(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("table %q not found\nHint: run 'datapulse tables list' to see table ids", id)
		}
		return fmt.Errorf("failed to load table %s: %w", id, err)
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(detail)
	case output.ModeMarkdown:
		md, err := docs.Markdown(cmd.Context(), detail)
		if err != nil {
			return err
		}
		r.Println(md)
		return nil
	default:
		showTableText(r, detail)
		return nil
	}
}

func showTableText(r *output.Renderer, d core.TableDetail) {
	styles := r.Styles()

	r.Header(1, d.QualifiedName())
	r.Println(docs.Description(d.TableSummary))
	r.Println(styles.Muted.Render(docs.Narrative))
	r.Println()
	r.Println(styles.Bold.Render("Owner:  ") + docs.Owner)
	r.Println(styles.Bold.Render("Tags:   ") + strings.Join(docs.Tags, ", "))
	r.Println(styles.Bold.Render("Rows:   ") + formatCount(d.RowCount))
	r.Println(styles.Bold.Render("Health: ") + formatHealth(d.HealthScore))
	r.Println()

	r.Header(2, fmt.Sprintf("Columns (%d)", len(d.Columns)))
	rows := make([][]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		rows = append(rows, []string{c.Name, c.Type, strings.Join(docs.Attributes(c), " "), c.Description})
	}
	r.Table([]string{"Column Name", "Type", "Attributes", "Description"}, rows)
}
