// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/internal/catalog"
	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/simulate"
	"github.com/leapstack-labs/datapulse/internal/testutil"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// FixedNow is the clock used by fixture catalogs.
var FixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Mock         *catalog.Mock
	Catalog      *StubCatalog
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Publisher    *events.Recorder

	t       *testing.T
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

type fixtureConfig struct {
	failureRate float64
	dataset     *catalog.Dataset
}

// FixtureOption configures SetupTestFixture.
type FixtureOption func(*fixtureConfig)

// WithFailureRate sets the mock's connection failure rate. 1 always fails.
func WithFailureRate(rate float64) FixtureOption {
	return func(c *fixtureConfig) { c.failureRate = rate }
}

// WithDataset replaces the default sample dataset.
func WithDataset(ds catalog.Dataset) FixtureOption {
	return func(c *fixtureConfig) { c.dataset = &ds }
}

// SetupTestFixture creates a fixture around a zero-latency mock catalog that
// never fails unless WithFailureRate says otherwise.
func SetupTestFixture(t *testing.T, opts ...FixtureOption) *TestFixture {
	t.Helper()

	cfg := fixtureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ds := catalog.DefaultDataset(FixedNow)
	if cfg.dataset != nil {
		ds = *cfg.dataset
	}

	ids := 0
	mock := catalog.NewMock(ds,
		catalog.WithLatency(0),
		catalog.WithProber(simulate.NewProber(0, cfg.failureRate, 1)),
		catalog.WithResponder(simulate.NewResponder(0)),
		catalog.WithClock(func() time.Time { return FixedNow }),
		catalog.WithIDGenerator(func() string {
			ids++
			return "new-" + common.Itoa(ids)
		}),
		catalog.WithLogger(testutil.NewTestLogger(t)),
	)

	return &TestFixture{
		Mock:         mock,
		Catalog:      &StubCatalog{Catalog: mock, calls: make(map[string]int), errs: make(map[string]error)},
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Publisher:    &events.Recorder{},
		t:            t,
		cookies:      make(map[string]*http.Cookie),
	}
}

// Deps returns handler dependencies wired to the fixture.
func (f *TestFixture) Deps() common.Deps {
	return common.Deps{
		Catalog:      f.Catalog,
		SessionStore: f.SessionStore,
		Notifier:     f.Notifier,
		Publisher:    f.Publisher,
		Logger:       testutil.NewTestLogger(f.t),
		IsDev:        true,
	}
}

// Do runs h against req as the fixture's browser: cookies set by earlier
// responses are sent and new ones are kept.
func (f *TestFixture) Do(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	f.mu.Lock()
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	f.mu.Unlock()

	rec := httptest.NewRecorder()
	h(rec, req)

	f.mu.Lock()
	for _, c := range rec.Result().Cookies() {
		f.cookies[c.Name] = c
	}
	f.mu.Unlock()
	return rec
}

// Forget drops the fixture browser's cookies, making the next request a new
// session.
func (f *TestFixture) Forget() {
	f.mu.Lock()
	f.cookies = make(map[string]*http.Cookie)
	f.mu.Unlock()
}

// SignalsRequest builds a datastar POST carrying signals as its JSON body.
func SignalsRequest(t *testing.T, target string, signals any) *http.Request {
	t.Helper()
	body, err := json.Marshal(signals)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// StubCatalog wraps a catalog, counting calls and injecting errors or a gate.
type StubCatalog struct {
	core.Catalog

	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error
	gate  chan struct{}
}

// Fail makes method return err until cleared with Fail(method, nil).
func (s *StubCatalog) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, method)
		return
	}
	s.errs[method] = err
}

// Hold blocks ConnectDatabase and AskChat until the returned release func runs.
func (s *StubCatalog) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how often method was called.
func (s *StubCatalog) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *StubCatalog) enter(ctx context.Context, method string, gated bool) error {
	s.mu.Lock()
	s.calls[method]++
	err := s.errs[method]
	gate := s.gate
	s.mu.Unlock()

	if gated && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// GetConnections implements core.Catalog.
func (s *StubCatalog) GetConnections(ctx context.Context) ([]core.DatabaseConnection, error) {
	if err := s.enter(ctx, "GetConnections", false); err != nil {
		return nil, err
	}
	return s.Catalog.GetConnections(ctx)
}

// ConnectDatabase implements core.Catalog.
func (s *StubCatalog) ConnectDatabase(ctx context.Context, d core.ConnectionDraft) (core.DatabaseConnection, error) {
	if err := s.enter(ctx, "ConnectDatabase", true); err != nil {
		return core.DatabaseConnection{}, err
	}
	return s.Catalog.ConnectDatabase(ctx, d)
}

// GetTables implements core.Catalog.
func (s *StubCatalog) GetTables(ctx context.Context) ([]core.TableSummary, error) {
	if err := s.enter(ctx, "GetTables", false); err != nil {
		return nil, err
	}
	return s.Catalog.GetTables(ctx)
}

// GetTableDetail implements core.Catalog.
func (s *StubCatalog) GetTableDetail(ctx context.Context, id string) (core.TableDetail, error) {
	if err := s.enter(ctx, "GetTableDetail", false); err != nil {
		return core.TableDetail{}, err
	}
	return s.Catalog.GetTableDetail(ctx, id)
}

// GetDashboardStats implements core.Catalog.
func (s *StubCatalog) GetDashboardStats(ctx context.Context) (core.DashboardStats, error) {
	if err := s.enter(ctx, "GetDashboardStats", false); err != nil {
		return core.DashboardStats{}, err
	}
	return s.Catalog.GetDashboardStats(ctx)
}

// AskChat implements core.Catalog.
func (s *StubCatalog) AskChat(ctx context.Context, text string) (core.ChatMessage, error) {
	if err := s.enter(ctx, "AskChat", true); err != nil {
		return core.ChatMessage{}, err
	}
	return s.Catalog.AskChat(ctx, text)
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestNotifier creates a notifier for testing.
func NewTestNotifier() *notifier.Notifier {
	return notifier.New()
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return workspace.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
