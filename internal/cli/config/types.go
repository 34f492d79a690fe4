// Package config provides configuration management for the DataPulse CLI
// and server.
package config

import "time"

// Catalog backends.
const (
	BackendMock   = "mock"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Default configuration values.
const (
	DefaultConfigFile = "datapulse.yaml"
	DefaultEnvFile    = ".env"
	DefaultPort       = 8765
	DefaultStateFile  = ".datapulse/catalog.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	EnvPrefix         = "DATAPULSE_"
)

// Config holds all configuration options.
type Config struct {
	Server       ServerConfig  `koanf:"server"`
	Catalog      CatalogConfig `koanf:"catalog"`
	Events       EventsConfig  `koanf:"events"`
	Log          LogConfig     `koanf:"log"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
}

// ServerConfig holds configuration for the web UI server.
type ServerConfig struct {
	Port int `koanf:"port"`
	// SessionSecret signs the session cookie. Empty generates a random
	// secret at startup, which invalidates sessions across restarts.
	SessionSecret string `koanf:"session_secret"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
}

// CatalogConfig selects and tunes the catalog backend.
type CatalogConfig struct {
	Backend   string `koanf:"backend"`
	SeedFile  string `koanf:"seed_file"`
	StatePath string `koanf:"state_path"`
	BaseURL   string `koanf:"base_url"`

	Latency time.Duration `koanf:"latency"`
	// ChatLatency of zero means twice Latency.
	ChatLatency time.Duration `koanf:"chat_latency"`
	FailureRate float64       `koanf:"failure_rate"`
	// HealthScore of zero keeps the dataset's value.
	HealthScore int    `koanf:"health_score"`
	RandomSeed  uint64 `koanf:"random_seed"`
}

// EffectiveChatLatency returns the assistant reply delay.
func (c CatalogConfig) EffectiveChatLatency() time.Duration {
	if c.ChatLatency > 0 {
		return c.ChatLatency
	}
	return 2 * c.Latency
}

// EventsConfig configures event publishing.
type EventsConfig struct {
	NATSURL string `koanf:"nats_url"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort, AutoOpen: true, Watch: true},
		Catalog: CatalogConfig{
			Backend:     BackendMock,
			StatePath:   DefaultStateFile,
			Latency:     800 * time.Millisecond,
			FailureRate: 0.1,
		},
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		OutputFormat: DefaultOutput,
	}
}
