package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/cli/output"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newBuildInfo(version, buildDate, commit string) BuildInfo {
	return BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, commit string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the DataPulse version with the build date, commit, Go version
and platform. Honors --output; --short prints the bare version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := newBuildInfo(version, buildDate, commit)
			r := NewCommandContextWithoutCatalog(cmd).Renderer

			switch {
			case short:
				r.Println(info.Version)
			case r.EffectiveMode() == output.ModeJSON:
				return r.JSON(info)
			default:
				r.Header(1, "DataPulse v"+info.Version)
				r.Println(output.FormatKeyValue("Built", info.BuildDate))
				r.Println(output.FormatKeyValue("Commit", info.Commit))
				r.Println(output.FormatKeyValue("Go", info.GoVersion))
				r.Println(output.FormatKeyValue("Platform", info.Platform))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
