package connections

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Handlers provides HTTP handlers for the connections feature.
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

// ConnectionsPage mounts the page: state is reset and the list is fetched
// by ConnectionsLoad.
func (h *Handlers) ConnectionsPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	st.Mount(r.URL.Query().Get("q"))

	page := components.Page{Title: "Connections", CurrentPath: "/connections", IsDev: h.deps.IsDev}
	if err := components.Layout(page, PageView(st.Snapshot())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ConnectionsLoad fetches the connection list for the mount named by the gen
// query parameter. Results for an older mount are dropped.
func (h *Handlers) ConnectionsLoad(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	gen, _ := strconv.ParseUint(r.URL.Query().Get("gen"), 10, 64)

	sse := datastar.NewSSE(w, r)
	conns, err := h.deps.Catalog.GetConnections(r.Context())
	if err != nil && r.Context().Err() != nil {
		return
	}
	if err != nil {
		h.deps.Log().Warn("failed to load connections", slog.String("error", err.Error()))
	}
	if !st.Loaded(gen, conns, err) {
		h.deps.Log().Debug("dropping stale connections load", slog.Uint64("gen", gen))
		return
	}

	if err := sse.PatchElementTempl(ListView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// OpenForm shows the add-connection form.
func (h *Handlers) OpenForm(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	st.Open()

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(DefaultSignals()); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(ModalView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// CloseForm hides the form. It is ignored while a submit is in flight.
func (h *Handlers) CloseForm(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	st.Close()

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(ModalView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SubmitForm validates the form and attempts the connection. Validation
// failures never reach the catalog.
func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	var signals FormSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)

	sub, err := st.Submit(signals.Draft())
	if errors.Is(err, ErrSubmitting) {
		return
	}
	if err := sse.PatchElementTempl(ModalView(st.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
	if err != nil {
		return
	}

	conn, err := h.deps.Catalog.ConnectDatabase(r.Context(), sub.Draft)
	alert := ""
	if err != nil {
		alert = common.ConnectionFailure(err)
		h.deps.Log().Info("connection attempt failed",
			slog.String("host", sub.Draft.Host),
			slog.String("code", core.ErrorCode(err)))
	}
	if !st.Finish(sub, conn, err, alert) {
		return
	}

	if err != nil {
		if err := sse.PatchElementTempl(ModalView(st.Snapshot())); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	h.deps.Log().Info("connection created", slog.String("id", conn.ID), slog.String("name", conn.Name))
	snap := st.Snapshot()
	if err := sse.PatchElementTempl(ModalView(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
	if err := sse.PatchElementTempl(ListView(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
	if err := sse.MarshalAndPatchSignals(DefaultSignals()); err != nil {
		_ = sse.ConsoleError(err)
	}

	h.deps.Notifier.Broadcast(notifier.Change{Kind: notifier.ConnectionCreated})
	if err := h.deps.Events().Publish(r.Context(), events.ConnectionCreated(conn)); err != nil {
		h.deps.Log().Warn("failed to publish connection event", slog.String("error", err.Error()))
	}
}

// Search filters the list by the search signal.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	var signals FormSignals
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
