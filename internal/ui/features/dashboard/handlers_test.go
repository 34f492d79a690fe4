package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/datapulse/internal/ui/features"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Deps()), fixture
}

// =============================================================================
// DashboardPage Tests - full HTML shell
// =============================================================================

func TestDashboardPage(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.DashboardPage(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Dashboard - DataPulse</title>",
		"Overview of your data landscape.",
		"/dashboard/load",
		"/updates",
		"ui-content",
		ContentID,
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
	assert.Equal(t, 0, fixture.Catalog.Calls("GetDashboardStats"), "page shell should not fetch")
}

// =============================================================================
// DashboardLoad Tests - one-shot SSE fetch
// =============================================================================

func TestDashboardLoad(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.DashboardLoad(rec, httptest.NewRequest(http.MethodGet, "/dashboard/load", nil))

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:"))
	for _, want := range []string{
		"Total Connections",
		"Total Tables",
		"2,515,420",
		"92%",
		"Production Snowflake",
		"Legacy Postgres",
		"badge-success",
		"badge-destructive",
		"Schema Sync",
		"10:32 AM",
	} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, 1, fixture.Catalog.Calls("GetDashboardStats"))
	assert.Equal(t, 1, fixture.Catalog.Calls("GetConnections"))
}

func TestDashboardLoad_Failure(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{"stats fail", "GetDashboardStats"},
		{"connections fail", "GetConnections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			fixture.Catalog.Fail(tt.method, errors.New("backend down"))

			rec := httptest.NewRecorder()
			h.DashboardLoad(rec, httptest.NewRequest(http.MethodGet, "/dashboard/load", nil))

			body := rec.Body.String()
			assert.Contains(t, body, "Dashboard unavailable")
			assert.Contains(t, body, "backend down")
			assert.Contains(t, body, "Retry")
			assert.NotContains(t, body, "Total Connections")
		})
	}
}

func TestRecent_Limits(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	ds := fixture.Mock.Dataset()
	base := ds.Connections[0]
	for i := 0; i < 6; i++ {
		c := base
		c.ID = "extra-" + string(rune('a'+i))
		ds.Connections = append(ds.Connections, c)
	}
	fixture.Mock.Reload(ds)

	data, err := h.fetch(context.Background())
	assert.NoError(t, err)
	assert.Len(t, data.Recent, RecentLimit)
	assert.Equal(t, 8, data.Stats.TotalConnections)
}

// =============================================================================
// DashboardUpdates Tests - SSE endpoint for live updates only
// =============================================================================

func TestDashboardUpdates_SendsUpdateOnBroadcast(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 300*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.DashboardUpdates(rec, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	fixture.Notifier.Broadcast(notifier.Change{Kind: notifier.ConnectionCreated})

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1, "should have at least 1 SSE event from broadcast")
	assert.Contains(t, body, "Total Rows Processed")
}

func TestDashboardUpdates_NoInitialState(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 50*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.DashboardUpdates(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"), "should have no SSE events without broadcast")
}
