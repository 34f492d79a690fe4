package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/internal/catalog"
	"github.com/leapstack-labs/datapulse/internal/cli/config"
	"github.com/leapstack-labs/datapulse/internal/state"
	"github.com/leapstack-labs/datapulse/internal/testutil"
)

func TestOpen_Mock(t *testing.T) {
	b, err := Open(context.Background(), config.CatalogConfig{Backend: config.BackendMock, HealthScore: 70}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &catalog.Mock{}, b.Catalog)
	_, ok := b.Reloader()
	assert.True(t, ok)

	stats, err := b.Catalog.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 70, stats.HealthScore)
	assert.Equal(t, int64(2515420), stats.TotalRows)
}

func TestOpen_MockWithSeedFile(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("tables:\n  - id: a\n    name: A\n    row_count: 5\n"), 0o600))

	b, err := Open(context.Background(), config.CatalogConfig{SeedFile: seed}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	tables, err := b.Catalog.GetTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "A", tables[0].Name)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	b, err := Open(context.Background(), config.CatalogConfig{Backend: config.BackendSQLite, StatePath: path}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &state.SQLiteStore{}, b.Catalog)
	_, ok := b.Reloader()
	assert.False(t, ok)

	conns, err := b.Catalog.GetConnections(context.Background())
	require.NoError(t, err)
	assert.Len(t, conns, 2)
	assert.FileExists(t, path)
}

func TestOpen_Remote(t *testing.T) {
	b, err := Open(context.Background(), config.CatalogConfig{Backend: config.BackendRemote, BaseURL: "http://localhost:1/api/v1"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, config.BackendRemote, b.Kind)
	assert.NoError(t, b.Close())
}

func TestOpen_Errors(t *testing.T) {
	logger := testutil.NewTestLogger(t)

	_, err := Open(context.Background(), config.CatalogConfig{Backend: "oracle"}, logger)
	assert.ErrorContains(t, err, "unknown catalog backend")

	_, err = Open(context.Background(), config.CatalogConfig{SeedFile: filepath.Join(t.TempDir(), "missing.yaml")}, logger)
	assert.Error(t, err)

	_, err = Open(context.Background(), config.CatalogConfig{Backend: config.BackendRemote, BaseURL: "ftp://x"}, logger)
	assert.Error(t, err)
}
