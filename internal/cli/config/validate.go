package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Catalog.Backend {
	case BackendMock:
	case BackendSQLite:
		if c.Catalog.StatePath == "" {
			return fmt.Errorf("catalog.state_path is required for the sqlite backend")
		}
	case BackendRemote:
		if c.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog.base_url is required for the remote backend\nHint: point it at another server, e.g. http://localhost:8765/api/v1")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q (want mock, sqlite or remote)", c.Catalog.Backend)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Catalog.Latency < 0 || c.Catalog.ChatLatency < 0 {
		return fmt.Errorf("catalog latencies must not be negative")
	}
	if c.Catalog.FailureRate < 0 || c.Catalog.FailureRate > 1 {
		return fmt.Errorf("catalog.failure_rate must be between 0 and 1, got %v", c.Catalog.FailureRate)
	}
	if c.Catalog.HealthScore < 0 || c.Catalog.HealthScore > 100 {
		return fmt.Errorf("catalog.health_score must be between 0 and 100, got %d", c.Catalog.HealthScore)
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// NewLogger builds the logger described by c. Verbose forces debug level.
func NewLogger(w io.Writer, c *Config) *slog.Logger {
	lvl, err := ParseLevel(c.Log.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	if c.Verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
