package explorer

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datapulse/internal/ui/features"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Deps()), fixture
}

func currentState(h *Handlers, f *features.TestFixture) *State {
	var st *State
	f.Do(func(w http.ResponseWriter, r *http.Request) {
		st, _ = h.state(w, r)
	}, httptest.NewRequest(http.MethodGet, "/", nil))
	return st
}

func mount(t *testing.T, h *Handlers, f *features.TestFixture, target string) (*State, string) {
	t.Helper()
	rec := f.Do(h.ExplorerPage, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	st := currentState(h, f)
	gen := strconv.FormatUint(st.Snapshot().Generation, 10)
	load := f.Do(h.ExplorerLoad, httptest.NewRequest(http.MethodGet, "/explorer/load?gen="+gen, nil))
	return st, load.Body.String()
}

// =============================================================================
// Tests
// =============================================================================

func TestExplorerPage(t *testing.T) {
	h, f := setupTestHandlers(t)

	rec := f.Do(h.ExplorerPage, httptest.NewRequest(http.MethodGet, "/explorer", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Schema Explorer - DataPulse</title>")
	assert.Contains(t, body, "Search tables...")
	assert.Contains(t, body, "/explorer/load?gen=1")
	assert.Equal(t, 0, f.Catalog.Calls("GetTables"))
}

func TestExplorerLoad_SelectsFirstTable(t *testing.T) {
	h, f := setupTestHandlers(t)

	st, body := mount(t, h, f, "/explorer")

	assert.Contains(t, body, "CUSTOMERS")
	assert.Contains(t, body, "ORDERS")
	assert.Contains(t, body, "Health Score")
	assert.Contains(t, body, "98%")
	assert.Contains(t, body, "15,420 rows")
	assert.Contains(t, body, "AI Documentation")
	assert.Contains(t, body, "Data Engineering Team")
	assert.Contains(t, body, "Validated")

	snap := st.Snapshot()
	assert.Equal(t, "t1", snap.Selected)
	require.NotNil(t, snap.Detail)
	assert.Equal(t, 1, f.Catalog.Calls("GetTableDetail"))
}

func TestExplorerPage_QueryPrefill(t *testing.T) {
	h, f := setupTestHandlers(t)

	rec := f.Do(h.ExplorerPage, httptest.NewRequest(http.MethodGet, "/explorer?q=sales", nil))
	assert.Contains(t, rec.Body.String(), `value="sales"`)

	st, _ := mount(t, h, f, "/explorer?q=sales")
	snap := st.Snapshot()
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "t2", snap.Visible[0].ID)
	assert.Equal(t, "t2", snap.Selected)
}

func TestSelectTable(t *testing.T) {
	h, f := setupTestHandlers(t)
	st, _ := mount(t, h, f, "/explorer")

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/select/t2", nil), "id", "t2")
	rec := f.Do(h.SelectTable, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Transactional order history.")
	assert.Contains(t, body, "2,500,000 rows")
	assert.Equal(t, "ORDERS", st.Snapshot().Detail.Name)
	assert.Equal(t, 2, f.Catalog.Calls("GetTableDetail"))
}

func TestSelectTable_Unknown(t *testing.T) {
	h, f := setupTestHandlers(t)
	st, _ := mount(t, h, f, "/explorer")

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/select/missing", nil), "id", "missing")
	f.Do(h.SelectTable, req)

	assert.Equal(t, "t1", st.Snapshot().Selected)
	assert.Equal(t, 1, f.Catalog.Calls("GetTableDetail"))
}

func TestSelectTable_DetailFailure(t *testing.T) {
	h, f := setupTestHandlers(t)
	mount(t, h, f, "/explorer")
	f.Catalog.Fail("GetTableDetail", assert.AnError)

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/select/t2", nil), "id", "t2")
	rec := f.Do(h.SelectTable, req)

	assert.Contains(t, rec.Body.String(), "Failed to load table details")
}

func TestSelectTab(t *testing.T) {
	tests := []struct {
		tab  string
		want string
	}{
		{"columns", "Column Name"},
		{"preview", "Data preview requires active database connection."},
		{"overview", "AI Documentation"},
	}

	for _, tt := range tests {
		t.Run(tt.tab, func(t *testing.T) {
			h, f := setupTestHandlers(t)
			mount(t, h, f, "/explorer")

			req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/tab/"+tt.tab, nil), "tab", tt.tab)
			rec := f.Do(h.SelectTab, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestSelectTab_Columns(t *testing.T) {
	h, f := setupTestHandlers(t)
	mount(t, h, f, "/explorer")

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/tab/columns", nil), "tab", "columns")
	body := f.Do(h.SelectTab, req).Body.String()

	assert.Contains(t, body, "EMAIL")
	assert.Contains(t, body, "VARCHAR(36)")
	assert.Contains(t, body, ">PK</span>")
	assert.Contains(t, body, ">NULL</span>")
}

func TestSelectTab_Unknown(t *testing.T) {
	h, f := setupTestHandlers(t)
	mount(t, h, f, "/explorer")

	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodPost, "/explorer/tab/lineage", nil), "tab", "lineage")
	rec := f.Do(h.SelectTab, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	h, f := setupTestHandlers(t)
	mount(t, h, f, "/explorer")

	rec := f.Do(h.Search, features.SignalsRequest(t, "/explorer/search", map[string]any{"tableSearch": "SALES"}))
	body := rec.Body.String()
	assert.Contains(t, body, "ORDERS")
	assert.NotContains(t, body, "CUSTOMERS")

	rec = f.Do(h.Search, features.SignalsRequest(t, "/explorer/search", map[string]any{"tableSearch": "zzz"}))
	assert.Contains(t, rec.Body.String(), "No tables found.")
	assert.Equal(t, 1, f.Catalog.Calls("GetTables"))
}

func TestExplorerLoad_Failure(t *testing.T) {
	h, f := setupTestHandlers(t)
	f.Catalog.Fail("GetTables", assert.AnError)

	st, body := mount(t, h, f, "/explorer")
	assert.Contains(t, body, "Failed to load tables")
	assert.Contains(t, body, "Select a table to view details")
	assert.Equal(t, 0, f.Catalog.Calls("GetTableDetail"))
	assert.False(t, st.Snapshot().Loading)
}
