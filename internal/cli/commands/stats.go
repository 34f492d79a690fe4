package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/cli/output"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Long:  `Show total connections, total tables, total rows and system health.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd)
		},
	}
}

func runStats(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := cc.Catalog.GetDashboardStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(stats)
	}

	r.Header(1, "Overview")
	r.Println(output.FormatKeyValue("Total Connections", strconv.Itoa(stats.TotalConnections)))
	r.Println(output.FormatKeyValue("Total Tables", strconv.Itoa(stats.TotalTables)))
	r.Println(output.FormatKeyValue("Total Rows Processed", formatCount(stats.TotalRows)))
	r.Println(output.FormatKeyValue("System Health", strconv.Itoa(stats.HealthScore)+"%"))
	return nil
}
