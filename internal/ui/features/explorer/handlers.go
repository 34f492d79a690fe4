package explorer

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

// Handlers provides HTTP handlers for the explorer feature.
type Handlers struct {
	deps   common.Deps
	states *workspace.Store[State]
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{
		deps:   deps,
		states: workspace.NewStore(NewState),
	}
}

func (h *Handlers) state(w http.ResponseWriter, r *http.Request) (*State, bool) {
	id, err := workspace.SessionID(w, r, h.deps.SessionStore)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return h.states.Get(id), true
}

// searchSignals carries the list search box.
type searchSignals struct {
	Search string `json:"tableSearch"`
}

// ExplorerPage mounts the page. A q query parameter prefills the search.
func (h *Handlers) ExplorerPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	st.Mount(query)

	page := components.Page{Title: "Schema Explorer", CurrentPath: "/explorer", Query: query, IsDev: h.deps.IsDev}
	if err := components.Layout(page, PageView(st.Snapshot())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ExplorerLoad fetches the table list for the mount named by gen, selects
// the first table and fetches its detail.
func (h *Handlers) ExplorerLoad(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	gen, _ := strconv.ParseUint(r.URL.Query().Get("gen"), 10, 64)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()

	tables, err := h.deps.Catalog.GetTables(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		h.deps.Log().Warn("failed to load tables", slog.String("error", err.Error()))
	}
	ticket, fetch, current := st.Loaded(gen, tables, err)
	if !current {
		h.deps.Log().Debug("dropping stale table load", slog.Uint64("gen", gen))
		return
	}

	h.patch(sse, st.Snapshot())
	if fetch {
		h.loadDetail(ctx, sse, st, ticket)
	}
}

// SelectTable selects a table and fetches its detail.
func (h *Handlers) SelectTable(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	ticket, ok := st.Select(chi.URLParam(r, "id"))
	sse := datastar.NewSSE(w, r)
	if !ok {
		return
	}

	h.patch(sse, st.Snapshot())
	h.loadDetail(r.Context(), sse, st, ticket)
}

// SelectTab switches the detail tab.
func (h *Handlers) SelectTab(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	tab, valid := ParseTab(chi.URLParam(r, "tab"))
	if !valid {
		http.Error(w, "unknown tab", http.StatusBadRequest)
		return
	}
	st.SetTab(tab)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(DetailView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Search filters the table list.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	var signals searchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st.Search(signals.Search)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(ListView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) loadDetail(ctx context.Context, sse *datastar.ServerSentEventGenerator, st *State, t DetailTicket) {
	detail, err := h.deps.Catalog.GetTableDetail(ctx, t.ID)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		h.deps.Log().Warn("failed to load table detail", slog.String("table", t.ID), slog.String("error", err.Error()))
	}
	if !st.DetailLoaded(t, detail, err) {
		return
	}
	if err := sse.PatchElementTempl(DetailView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, snap Snapshot) {
	if err := sse.PatchElementTempl(ListView(snap)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(DetailView(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
