package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/backend"
	"github.com/leapstack-labs/datapulse/internal/cli/config"
	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/ui"
)

// ServeOptions holds options for the serve command. The flags feed the
// server.* config keys; the values here are only the flag targets.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the DataPulse web UI",
		Long: `Start a local web server providing the DataPulse dashboard.

The UI provides:
- Dashboard with connection, table and row counts
- Connection management with a guided add form
- Schema explorer with generated table documentation
- An assistant chat about your data

The JSON API used by the remote backend is served under /api/v1.`,
		Example: `  # Start UI on default port
  datapulse serve

  # Start on custom port
  datapulse serve --port 3000

  # Serve a custom dataset and reload it on every save
  datapulse serve --seed-file catalog.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultPort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Enable hot reload and watch the seed file")
	config.BindFlag(cmd.Flags(), "port", "server.port")
	config.BindFlag(cmd.Flags(), "no-browser", "server.auto_open")
	config.BindFlag(cmd.Flags(), "watch", "server.watch")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cc.Cfg
	r := cc.Renderer

	publisher, err := events.Open(cfg.Events.NATSURL, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	server := ui.NewServer(ui.Config{
		Catalog:       cc.Catalog,
		Publisher:     publisher,
		Port:          cfg.Server.Port,
		Watch:         cfg.Server.Watch,
		SeedFile:      cfg.Catalog.SeedFile,
		Reload:        datasetReloader(cc.Backend, cfg.Catalog),
		SessionSecret: cfg.Server.SessionSecret,
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if cfg.Server.AutoOpen {
		go openBrowser(url)
	}

	r.Printf("Starting UI server on %s (%s catalog)\n", url, cc.Backend.Kind)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// datasetReloader returns the reload hook for backends that can swap their
// dataset, or nil.
func datasetReloader(b *backend.Backend, cfg config.CatalogConfig) ui.ReloadFunc {
	rl, ok := b.Reloader()
	if !ok || cfg.SeedFile == "" {
		return nil
	}
	return func(context.Context) (events.ReloadSummary, error) {
		ds, err := backend.LoadDataset(cfg)
		if err != nil {
			return events.ReloadSummary{}, err
		}
		rl.Reload(ds)
		return events.ReloadSummary{
			Source:      cfg.SeedFile,
			Connections: len(ds.Connections),
			Tables:      len(ds.Tables),
		}, nil
	}
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
