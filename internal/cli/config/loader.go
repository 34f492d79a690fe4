package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// KeyAnnotation on a command-local flag names the config key it sets.
// Unannotated local flags never reach the config.
const KeyAnnotation = "datapulse_config_key"

// flagKeys maps the global flags to their config keys.
var flagKeys = map[string]string{
	"backend":   "catalog.backend",
	"seed-file": "catalog.seed_file",
	"state":     "catalog.state_path",
	"base-url":  "catalog.base_url",
	"latency":   "catalog.latency",
	"log-level": "log.level",
}

// BindFlag marks a command-local flag as setting key.
func BindFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, KeyAnnotation, []string{key})
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// Options controls where LoadConfig looks for its sources.
type Options struct {
	// ConfigFile is an explicit config file path.
	ConfigFile string
	// Dir is searched for datapulse.yaml and .env when ConfigFile is empty.
	// Defaults to the working directory.
	Dir string
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// Defaults returns the default configuration values keyed by config path.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":          DefaultPort,
		"server.auto_open":     true,
		"server.watch":         true,
		"catalog.backend":      BackendMock,
		"catalog.state_path":   DefaultStateFile,
		"catalog.latency":      "800ms",
		"catalog.failure_rate": 0.1,
		"log.level":            DefaultLogLevel,
		"log.format":           DefaultLogFormat,
		"verbose":              false,
		"output":               DefaultOutput,
	}
}

// LoadConfig loads configuration from defaults, the config file, the .env
// file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
func LoadConfig(opts Options, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	dir := opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cfgFile := opts.ConfigFile
	if cfgFile == "" {
		for _, name := range []string{DefaultConfigFile, "datapulse.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	}

	// 3. .env file, then the process environment (DATAPULSE_ prefix)
	// Transform: DATAPULSE_CATALOG__SEED_FILE -> catalog.seed_file
	dotenv, err := godotenv.Read(filepath.Join(dir, DefaultEnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", DefaultEnvFile, err)
	}
	if err := k.Load(confmap.Provider(envMap(dotenv), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			if keys := f.Annotations[KeyAnnotation]; len(keys) > 0 {
				if f.Name == "no-browser" {
					return keys[0], !posflag.FlagVal(flags, f).(bool)
				}
				return keys[0], posflag.FlagVal(flags, f)
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			switch f.Name {
			case "verbose", "output":
				return f.Name, posflag.FlagVal(flags, f)
			}
			return "", nil
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal with duration decoding
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the config directory
	base := dir
	if configFileUsed != "" {
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			base = filepath.Dir(abs)
		}
	}
	cfg.Catalog.SeedFile = resolvePathRelativeTo(cfg.Catalog.SeedFile, base)
	if cfg.Catalog.StatePath != ":memory:" {
		cfg.Catalog.StatePath = resolvePathRelativeTo(cfg.Catalog.StatePath, base)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns a DATAPULSE_ variable name into a config key. A double
// underscore separates sections: DATAPULSE_SERVER__PORT -> server.port.
// Names that map to nothing are skipped.
func envKey(name string) string {
	if !strings.HasPrefix(name, EnvPrefix) {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// envMap applies envKey to the variables read from a .env file.
func envMap(vars map[string]string) map[string]any {
	out := make(map[string]any)
	for name, value := range vars {
		if key := envKey(name); key != "" {
			out[key] = value
		}
	}
	return out
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	// Return default config if none in context
	return Default()
}
