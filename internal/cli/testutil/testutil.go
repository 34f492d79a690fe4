// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/cli/config"
	"github.com/leapstack-labs/datapulse/internal/cli/output"
	"github.com/leapstack-labs/datapulse/internal/testutil"
)

// SeedYAML is a small dataset: two connections and three tables, one of
// them with explicit columns.
const SeedYAML = `health_score: 88
connections:
  - id: c1
    name: Warehouse
    type: snowflake
    host: acme.snowflakecomputing.com
    port: 443
    username: loader
    database: ANALYTICS
    status: connected
  - id: c2
    name: Shop MySQL
    type: mysql
    host: mysql.shop.internal
    port: 3306
    username: app
    database: shop
    status: error
tables:
  - id: t1
    name: CUSTOMERS
    schema: PUBLIC
    row_count: 15420
    column_count: 12
    description: Customer profiles.
    health_score: 98
  - id: t2
    name: ORDERS
    schema: SALES
    row_count: 2500000
    column_count: 24
    health_score: 85
  - id: t3
    name: PRODUCTS
    schema: CATALOG
    row_count: 120
    column_count: 2
    columns:
      - name: SKU
        type: VARCHAR(32)
        primary_key: true
        description: Stock keeping unit
      - name: PRICE
        type: DECIMAL(10,2)
        nullable: true
`

// WriteSeedFile writes SeedYAML into dir and returns its path.
func WriteSeedFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(path, []byte(SeedYAML), 0o600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

// TestConfig returns a mock-backend config serving SeedYAML with no latency
// and no simulated failures.
func TestConfig(t *testing.T, mutators ...func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.SeedFile = WriteSeedFile(t, t.TempDir())
	cfg.Catalog.Latency = 0
	cfg.Catalog.FailureRate = 0
	cfg.Catalog.RandomSeed = 1
	cfg.OutputFormat = string(output.ModeMarkdown)
	for _, m := range mutators {
		m(cfg)
	}
	return cfg
}

// CommandContext returns a context carrying cfg and a test logger, the way
// the root command prepares it.
func CommandContext(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	ctx := context.WithValue(context.Background(), config.ConfigKey(), cfg)
	return context.WithValue(ctx, config.LoggerKey(), testutil.NewTestLogger(t))
}

// Result holds the captured output of a command run.
type Result struct {
	Out    string
	ErrOut string
	Err    error
}

// Execute runs cmd with args under ctx and captures its output. Usage and
// error printing are silenced as on the root command.
func Execute(ctx context.Context, cmd *cobra.Command, args ...string) Result {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return Result{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode.
// Output is captured in buffers, so auto mode resolves to markdown.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
