package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/datapulse/internal/dsn"
	"github.com/leapstack-labs/datapulse/internal/simulate"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Mock serves a Dataset from memory with simulated latency and failures.
// It is safe for concurrent use; every read returns a copy.
type Mock struct {
	mu sync.RWMutex
	ds Dataset

	latency   time.Duration
	prober    *simulate.Prober
	responder *simulate.Responder
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

var _ core.Catalog = (*Mock)(nil)

// Option configures a Mock.
type Option func(*Mock)

// WithLatency sets the delay applied to every call. The chat delay is twice this
// unless WithResponder is also given.
func WithLatency(d time.Duration) Option {
	return func(m *Mock) { m.latency = d }
}

// WithProber replaces the connection attempt simulator.
func WithProber(p *simulate.Prober) Option {
	return func(m *Mock) { m.prober = p }
}

// WithResponder replaces the assistant simulator.
func WithResponder(r *simulate.Responder) Option {
	return func(m *Mock) { m.responder = r }
}

// WithClock sets the time source for new connections.
func WithClock(now func() time.Time) Option {
	return func(m *Mock) { m.now = now }
}

// WithIDGenerator sets the id source for new connections.
func WithIDGenerator(fn func() string) Option {
	return func(m *Mock) { m.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mock) { m.logger = logger }
}

// NewMock creates a mock catalog serving ds.
func NewMock(ds Dataset, opts ...Option) *Mock {
	m := &Mock{
		ds:      ds.Clone(),
		latency: simulate.DefaultLatency,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.prober == nil {
		m.prober = simulate.NewProber(m.latency, simulate.DefaultFailureRate, 0)
	}
	if m.responder == nil {
		m.responder = simulate.NewResponder(2 * m.latency)
	}
	return m
}

// Reload replaces the served dataset.
func (m *Mock) Reload(ds Dataset) {
	m.mu.Lock()
	m.ds = ds.Clone()
	m.mu.Unlock()

	m.logger.Info("catalog dataset reloaded",
		slog.Int("connections", len(ds.Connections)),
		slog.Int("tables", len(ds.Tables)))
}

// Dataset returns a copy of the served dataset.
func (m *Mock) Dataset() Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds.Clone()
}

// GetConnections implements core.Catalog.
func (m *Mock) GetConnections(ctx context.Context) ([]core.DatabaseConnection, error) {
	if err := simulate.Delay(ctx, m.latency); err != nil {
		return nil, err
	}
	return m.Dataset().Connections, nil
}

// ConnectDatabase implements core.Catalog. The new connection is returned but
// not added to the served dataset.
func (m *Mock) ConnectDatabase(ctx context.Context, draft core.ConnectionDraft) (core.DatabaseConnection, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return core.DatabaseConnection{}, err
	}

	d, err := dsn.Build(dsn.FromDraft(draft))
	if err != nil {
		return core.DatabaseConnection{}, &core.ValidationError{Fields: map[string]string{"host": err.Error()}}
	}

	m.logger.Debug("connection attempt", slog.String("driver", d.Driver), slog.String("dsn", d.Redacted()))

	if err := m.prober.Probe(ctx, draft); err != nil {
		m.logger.Warn("connection attempt failed", slog.String("host", draft.Host), slog.String("error", err.Error()))
		return core.DatabaseConnection{}, err
	}

	return draft.NewConnection(m.newID(), m.now()), nil
}

// GetTables implements core.Catalog.
func (m *Mock) GetTables(ctx context.Context) ([]core.TableSummary, error) {
	if err := simulate.Delay(ctx, m.latency); err != nil {
		return nil, err
	}
	return m.Dataset().Summaries(), nil
}

// GetTableDetail implements core.Catalog.
func (m *Mock) GetTableDetail(ctx context.Context, id string) (core.TableDetail, error) {
	if err := simulate.Delay(ctx, m.latency); err != nil {
		return core.TableDetail{}, err
	}

	detail, ok := m.Dataset().Detail(id)
	if !ok {
		return core.TableDetail{}, fmt.Errorf("table %q: %w", id, core.ErrNotFound)
	}
	return detail, nil
}

// GetDashboardStats implements core.Catalog.
func (m *Mock) GetDashboardStats(ctx context.Context) (core.DashboardStats, error) {
	if err := simulate.Delay(ctx, m.latency); err != nil {
		return core.DashboardStats{}, err
	}

	ds := m.Dataset()
	return core.ComputeStats(ds.Connections, ds.Summaries(), ds.HealthScore()), nil
}

// AskChat implements core.Catalog.
func (m *Mock) AskChat(ctx context.Context, text string) (core.ChatMessage, error) {
	return m.responder.Reply(ctx, text)
}
