package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/cli/output"
	"github.com/leapstack-labs/datapulse/internal/dsn"
	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/search"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// NewConnectionsCommand creates the connections command group.
func NewConnectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "List and add database connections",
	}

	cmd.AddCommand(newConnectionsListCommand())
	cmd.AddCommand(newConnectionsAddCommand())
	return cmd
}

func newConnectionsListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured database connections",
		Long: `List configured database connections with their status and DSN.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List every connection
  datapulse connections list

  # Only connections whose name or host contains "prod"
  datapulse connections list --search prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnectionsList(cmd, query)
		},
	}

	cmd.Flags().StringVarP(&query, "search", "s", "", "Filter by name or host (case-insensitive)")
	return cmd
}

func runConnectionsList(cmd *cobra.Command, query string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	conns, err := cc.Catalog.GetConnections(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load connections: %w", err)
	}
	conns = search.Connections(conns, query)

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(conns)
	}

	r.Header(1, fmt.Sprintf("Connections (%d)", len(conns)))
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		rows = append(rows, []string{
			c.Name,
			c.Type.Label(),
			c.Host,
			r.StatusBadge(string(c.Status)),
			redactedDSN(c),
		})
	}
	r.Table([]string{"Name", "Type", "Host", "Status", "DSN"}, rows)
	return nil
}

func redactedDSN(c core.DatabaseConnection) string {
	d, err := dsn.Build(dsn.FromConnection(c))
	if err != nil {
		return "-"
	}
	return d.Redacted()
}

// AddOptions holds the add-connection draft fields.
type AddOptions struct {
	Name     string
	Type     string
	Host     string
	Port     int
	Username string
	Database string
	Password string
}

// Draft builds the connection draft. A zero port takes the type's default.
func (o AddOptions) Draft() core.ConnectionDraft {
	d := core.ConnectionDraft{
		Name:     o.Name,
		Type:     core.SourceType(o.Type),
		Host:     o.Host,
		Port:     o.Port,
		Username: o.Username,
		Database: o.Database,
		Password: o.Password,
	}.Normalize()
	if d.Port == 0 {
		d.Port = d.Type.DefaultPort()
	}
	return d
}

func newConnectionsAddCommand() *cobra.Command {
	opts := &AddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Test and add a database connection",
		Long: `Test a database connection and add it to the catalog.

The connection attempt is made before anything is stored. The password is used
for the attempt only and is never saved.`,
		Example: `  datapulse connections add --name "Legacy Postgres" --type postgres \
    --host db.legacy.internal --username read_only --database ARCHIVE --password secret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnectionsAdd(cmd, opts)
		},
	}

	types := make([]string, len(core.SourceTypes))
	for i, t := range core.SourceTypes {
		types[i] = string(t)
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Connection name")
	cmd.Flags().StringVar(&opts.Type, "type", string(core.SourceSnowflake), "Database type ("+strings.Join(types, "|")+")")
	cmd.Flags().StringVar(&opts.Host, "host", "", "Database host")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Database port (default: the type's standard port)")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Database user")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Database password")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return types, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runConnectionsAdd(cmd *cobra.Command, opts *AddOptions) error {
	draft := opts.Draft()

	// Validate before opening anything so a bad draft never reaches the catalog
	if err := draft.Validate(); err != nil {
		return describeValidation(err)
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer

	spin := r.NewSpinner("Connecting to " + draft.Host + "...")
	spin.Start()
	conn, err := cc.Catalog.ConnectDatabase(cmd.Context(), draft)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	publisher, err := events.Open(cc.Cfg.Events.NATSURL, cc.Logger)
	if err != nil {
		cc.Logger.Warn("event bus unavailable", "error", err)
	} else {
		if err := publisher.Publish(cmd.Context(), events.ConnectionCreated(conn)); err != nil {
			cc.Logger.Warn("failed to publish event", "error", err)
		}
		_ = publisher.Close()
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(conn)
	}

	r.Success(fmt.Sprintf("Connected %s", conn.Name))
	r.Println(output.FormatKeyValue("ID", conn.ID))
	r.Println(output.FormatKeyValue("Type", conn.Type.Label()))
	r.Println(output.FormatKeyValue("Host", conn.Host+":"+strconv.Itoa(conn.Port)))
	r.Println(output.FormatKeyValue("DSN", redactedDSN(conn)))
	return nil
}

// describeValidation turns a validation error into one line per field.
func describeValidation(err error) error {
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	names := make([]string, 0, len(ve.Fields))
	for name := range ve.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid connection:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  --%s: %s", name, ve.Fields[name])
	}
	return errors.New(b.String())
}
