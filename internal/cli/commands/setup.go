package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/backend"
	"github.com/leapstack-labs/datapulse/internal/cli/config"
	"github.com/leapstack-labs/datapulse/internal/cli/output"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Backend  *backend.Backend
	Catalog  core.Catalog
	Renderer *output.Renderer
}

// openBackend is replaced in tests.
var openBackend = backend.Open

// NewCommandContext creates a CommandContext with an opened catalog and a renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutCatalog(cmd)

	b, err := openBackend(cmd.Context(), cc.Cfg.Catalog, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Backend = b
	cc.Catalog = b.Catalog

	cleanup := func() {
		if err := b.Close(); err != nil {
			cc.Logger.Warn("failed to close catalog", "error", err)
		}
	}

	return cc, cleanup, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext without a catalog.
// Useful for commands that don't need catalog access.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}
