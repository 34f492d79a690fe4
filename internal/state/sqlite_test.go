package state

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/internal/catalog"
	"github.com/leapstack-labs/datapulse/internal/simulate"
	"github.com/leapstack-labs/datapulse/internal/testutil"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions(t *testing.T, failureRate float64) Options {
	t.Helper()
	return Options{
		Prober:    simulate.NewProber(0, failureRate, 3),
		Responder: &simulate.Responder{Now: func() time.Time { return fixedNow }},
		Now:       func() time.Time { return fixedNow.Add(time.Hour) },
		NewID:     func() string { return "c-new" },
		Logger:    testutil.NewTestLogger(t),
	}
}

func setupTestStore(t *testing.T, failureRate float64) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testOptions(t, failureRate))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	seeded, err := store.Seed(ctx, catalog.DefaultDataset(fixedNow))
	require.NoError(t, err)
	require.True(t, seeded)
	return store
}

func validDraft() core.ConnectionDraft {
	return core.ConnectionDraft{
		Name:     "Warehouse",
		Type:     core.SourceMySQL,
		Host:     "mysql.internal",
		Port:     3306,
		Username: "app",
		Database: "shop",
		Password: "secret",
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := NewSQLiteStore(testOptions(t, 0))
	require.NoError(t, store.Open(":memory:"))
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	version, err := store.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"connections", "catalog_tables", "catalog_columns", "catalog_meta"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		_ = rows.Close()
	}

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestSQLiteStore_SeedOnlyWhenEmpty(t *testing.T) {
	store := setupTestStore(t, 0)

	seeded, err := store.Seed(context.Background(), catalog.DefaultDataset(fixedNow))
	require.NoError(t, err)
	assert.False(t, seeded)

	conns, err := store.GetConnections(context.Background())
	require.NoError(t, err)
	assert.Len(t, conns, 2)
}

func TestSQLiteStore_Reads(t *testing.T) {
	store := setupTestStore(t, 0)
	ctx := context.Background()

	conns, err := store.GetConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "Production Snowflake", conns[0].Name)
	assert.Equal(t, core.SourceSnowflake, conns[0].Type)
	assert.Equal(t, core.StatusError, conns[1].Status)
	assert.Equal(t, fixedNow, conns[0].CreatedAt)

	tables, err := store.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "CUSTOMERS", tables[0].Name)
	require.NotNil(t, tables[1].HealthScore)
	assert.Equal(t, 85, *tables[1].HealthScore)

	stats, err := store.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DashboardStats{TotalConnections: 2, TotalTables: 2, TotalRows: 2515420, HealthScore: 92}, stats)
}

func TestSQLiteStore_GetTableDetail(t *testing.T) {
	store := setupTestStore(t, 0)
	ctx := context.Background()

	detail, err := store.GetTableDetail(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMERS", detail.Name)
	require.Len(t, detail.Columns, 6)
	assert.Equal(t, "ID", detail.Columns[0].Name)
	assert.True(t, detail.Columns[0].IsPrimaryKey)
	assert.True(t, detail.Columns[4].IsNullable)

	_, err = store.GetTableDetail(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStore_ConnectDatabasePersists(t *testing.T) {
	store := setupTestStore(t, 0)
	ctx := context.Background()

	conn, err := store.ConnectDatabase(ctx, validDraft())
	require.NoError(t, err)
	assert.Equal(t, "c-new", conn.ID)
	assert.Equal(t, core.StatusConnected, conn.Status)

	conns, err := store.GetConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 3)
	assert.Equal(t, "Warehouse", conns[2].Name)

	stats, err := store.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalConnections)
}

func TestSQLiteStore_ConnectDatabaseFailureNotStored(t *testing.T) {
	store := setupTestStore(t, 1)
	ctx := context.Background()

	_, err := store.ConnectDatabase(ctx, validDraft())
	assert.True(t, core.IsConnectionError(err))

	draft := validDraft()
	draft.Name = ""
	_, err = store.ConnectDatabase(ctx, draft)
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve))

	conns, err := store.GetConnections(ctx)
	require.NoError(t, err)
	assert.Len(t, conns, 2)
}

func TestSQLiteStore_FilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datapulse.db")
	ctx := context.Background()

	store := NewSQLiteStore(testOptions(t, 0))
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate(ctx))
	_, err := store.Seed(ctx, catalog.DefaultDataset(fixedNow))
	require.NoError(t, err)
	_, err = store.ConnectDatabase(ctx, validDraft())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(testOptions(t, 0))
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(ctx))

	conns, err := reopened.GetConnections(ctx)
	require.NoError(t, err)
	assert.Len(t, conns, 3)
}

func TestSQLiteStore_AskChat(t *testing.T) {
	store := setupTestStore(t, 0)

	reply, err := store.AskChat(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Content, `"orders"`)
}

func TestSQLiteStore_QueryErrors(t *testing.T) {
	boom := errors.New("disk I/O error")

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *SQLiteStore) error
		wantMsg   string
	}{
		{
			name: "connections query",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM connections ORDER BY")).WillReturnError(boom)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetConnections(context.Background())
				return err
			},
			wantMsg: "failed to query connections",
		},
		{
			name: "tables query",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_tables ORDER BY")).WillReturnError(boom)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetTables(context.Background())
				return err
			},
			wantMsg: "failed to query tables",
		},
		{
			name: "stats count",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM connections")).WillReturnError(boom)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetDashboardStats(context.Background())
				return err
			},
			wantMsg: "failed to count connections",
		},
		{
			name: "bad health score",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM connections")).
					WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
				mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_tables")).
					WillReturnRows(sqlmock.NewRows([]string{"n", "rows"}).AddRow(1, 10))
				mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_meta")).
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("high"))
			},
			call: func(s *SQLiteStore) error {
				_, err := s.GetDashboardStats(context.Background())
				return err
			},
			wantMsg: "invalid health score",
		},
		{
			name: "insert after successful probe",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connections")).WillReturnError(boom)
			},
			call: func(s *SQLiteStore) error {
				_, err := s.ConnectDatabase(context.Background(), validDraft())
				return err
			},
			wantMsg: "failed to insert connection",
		},
		{
			name: "seed rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT (SELECT COUNT(*)")).
					WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connections")).WillReturnError(boom)
				mock.ExpectRollback()
			},
			call: func(s *SQLiteStore) error {
				_, err := s.Seed(context.Background(), catalog.DefaultDataset(fixedNow))
				return err
			},
			wantMsg: "failed to insert connection 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)
			store := NewWithDB(db, testOptions(t, 0))

			err = tt.call(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
