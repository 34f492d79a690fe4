// Package state provides the persistent SQLite catalog backend.
//
// Connections, tables and columns live in SQLite; schema changes are goose
// migrations embedded in the binary. Successful connection attempts are
// stored, so the connection list grows across restarts.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/datapulse/internal/catalog"
	"github.com/leapstack-labs/datapulse/internal/dsn"
	"github.com/leapstack-labs/datapulse/internal/simulate"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

const metaHealthScore = "health_score"

// Options configures the simulated parts of a SQLiteStore.
type Options struct {
	Latency   time.Duration
	Prober    *simulate.Prober
	Responder *simulate.Responder
	Now       func() time.Time
	NewID     func() string
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Prober == nil {
		o.Prober = simulate.NewProber(o.Latency, simulate.DefaultFailureRate, 0)
	}
	if o.Responder == nil {
		o.Responder = simulate.NewResponder(2 * o.Latency)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// SQLiteStore implements core.Catalog on SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	opts Options
}

var _ core.Catalog = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store. Call Open (or use NewWithDB) before use.
func NewSQLiteStore(opts Options) *SQLiteStore {
	return &SQLiteStore{opts: opts.withDefaults()}
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB, opts Options) *SQLiteStore {
	return &SQLiteStore{db: db, opts: opts.withDefaults()}
}

// Open opens the SQLite database at path. Use ":memory:" for an in-memory
// database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string { return s.path }

// Seed loads ds when the catalog is empty. It reports whether anything was written.
func (s *SQLiteStore) Seed(ctx context.Context, ds catalog.Dataset) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM connections) + (SELECT COUNT(*) FROM catalog_tables)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count catalog rows: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range ds.Connections {
		if err := insertConnection(ctx, tx, c); err != nil {
			return false, err
		}
	}

	for i, t := range ds.Tables {
		var health sql.NullInt64
		if t.HealthScore != nil {
			health = sql.NullInt64{Int64: int64(*t.HealthScore), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO catalog_tables (id, name, schema_name, row_count, column_count, description, health_score, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Schema, t.RowCount, t.ColumnCount, t.Description, health, i)
		if err != nil {
			return false, fmt.Errorf("failed to insert table %s: %w", t.ID, err)
		}

		cols := t.Columns
		if len(cols) == 0 {
			cols = catalog.SynthesizeColumns(t.Name)
		}
		for pos, col := range cols {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_columns (table_id, position, name, type, is_nullable, is_primary_key, is_foreign_key, description)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, pos, col.Name, col.Type, col.IsNullable, col.IsPrimaryKey, col.IsForeignKey, col.Description)
			if err != nil {
				return false, fmt.Errorf("failed to insert column %s.%s: %w", t.ID, col.Name, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO catalog_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaHealthScore, strconv.Itoa(ds.HealthScore()))
	if err != nil {
		return false, fmt.Errorf("failed to store health score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}

	s.opts.Logger.Info("catalog seeded",
		slog.Int("connections", len(ds.Connections)),
		slog.Int("tables", len(ds.Tables)))
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertConnection(ctx context.Context, ex execer, c core.DatabaseConnection) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO connections (id, name, type, host, port, username, database_name, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Host, c.Port, c.Username, c.Database, string(c.Status), c.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert connection %s: %w", c.ID, err)
	}
	return nil
}

// GetConnections implements core.Catalog.
func (s *SQLiteStore) GetConnections(ctx context.Context) ([]core.DatabaseConnection, error) {
	if err := simulate.Delay(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, host, port, username, database_name, status, created_at
		 FROM connections ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	conns := []core.DatabaseConnection{}
	for rows.Next() {
		var c core.DatabaseConnection
		var typ, status string
		var created int64
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Host, &c.Port, &c.Username, &c.Database, &status, &created); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		c.Type = core.SourceType(typ)
		c.Status = core.ConnectionStatus(status)
		c.CreatedAt = time.UnixMilli(created).UTC()
		conns = append(conns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read connections: %w", err)
	}
	return conns, nil
}

// ConnectDatabase implements core.Catalog. Successful connections are stored.
func (s *SQLiteStore) ConnectDatabase(ctx context.Context, draft core.ConnectionDraft) (core.DatabaseConnection, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return core.DatabaseConnection{}, err
	}

	d, err := dsn.Build(dsn.FromDraft(draft))
	if err != nil {
		return core.DatabaseConnection{}, &core.ValidationError{Fields: map[string]string{"host": err.Error()}}
	}
	s.opts.Logger.Debug("connection attempt", slog.String("driver", d.Driver), slog.String("dsn", d.Redacted()))

	if err := s.opts.Prober.Probe(ctx, draft); err != nil {
		return core.DatabaseConnection{}, err
	}

	conn := draft.NewConnection(s.opts.NewID(), s.opts.Now())
	if err := insertConnection(ctx, s.db, conn); err != nil {
		return core.DatabaseConnection{}, err
	}
	return conn, nil
}

// GetTables implements core.Catalog.
func (s *SQLiteStore) GetTables(ctx context.Context) ([]core.TableSummary, error) {
	if err := simulate.Delay(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, schema_name, row_count, column_count, description, health_score
		 FROM catalog_tables ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []core.TableSummary{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	return tables, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(sc scanner) (core.TableSummary, error) {
	var t core.TableSummary
	var health sql.NullInt64
	if err := sc.Scan(&t.ID, &t.Name, &t.Schema, &t.RowCount, &t.ColumnCount, &t.Description, &health); err != nil {
		return core.TableSummary{}, err
	}
	if health.Valid {
		t.HealthScore = core.HealthScore(int(health.Int64))
	}
	return t, nil
}

// GetTableDetail implements core.Catalog.
func (s *SQLiteStore) GetTableDetail(ctx context.Context, id string) (core.TableDetail, error) {
	if err := simulate.Delay(ctx, s.opts.Latency); err != nil {
		return core.TableDetail{}, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, schema_name, row_count, column_count, description, health_score
		 FROM catalog_tables WHERE id = ?`, id)
	summary, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TableDetail{}, fmt.Errorf("table %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.TableDetail{}, fmt.Errorf("failed to get table %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, is_nullable, is_primary_key, is_foreign_key, description
		 FROM catalog_columns WHERE table_id = ? ORDER BY position`, id)
	if err != nil {
		return core.TableDetail{}, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	detail := core.TableDetail{TableSummary: summary, Columns: []core.ColumnDetail{}}
	for rows.Next() {
		var c core.ColumnDetail
		if err := rows.Scan(&c.Name, &c.Type, &c.IsNullable, &c.IsPrimaryKey, &c.IsForeignKey, &c.Description); err != nil {
			return core.TableDetail{}, fmt.Errorf("failed to scan column: %w", err)
		}
		detail.Columns = append(detail.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return core.TableDetail{}, fmt.Errorf("failed to read columns: %w", err)
	}
	return detail, nil
}

// GetDashboardStats implements core.Catalog.
func (s *SQLiteStore) GetDashboardStats(ctx context.Context) (core.DashboardStats, error) {
	if err := simulate.Delay(ctx, s.opts.Latency); err != nil {
		return core.DashboardStats{}, err
	}

	var stats core.DashboardStats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM connections`).Scan(&stats.TotalConnections)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("failed to count connections: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(row_count), 0) FROM catalog_tables`).Scan(&stats.TotalTables, &stats.TotalRows)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("failed to count tables: %w", err)
	}

	var health string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = ?`, metaHealthScore).Scan(&health)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		stats.HealthScore = catalog.DefaultHealthScore
	case err != nil:
		return core.DashboardStats{}, fmt.Errorf("failed to read health score: %w", err)
	default:
		n, convErr := strconv.Atoi(health)
		if convErr != nil {
			return core.DashboardStats{}, fmt.Errorf("invalid health score %q: %w", health, convErr)
		}
		stats.HealthScore = n
	}

	return stats, nil
}

// AskChat implements core.Catalog.
func (s *SQLiteStore) AskChat(ctx context.Context, text string) (core.ChatMessage, error) {
	return s.opts.Responder.Reply(ctx, text)
}
