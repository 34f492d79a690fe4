package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datapulse/internal/chatlog"
	"github.com/leapstack-labs/datapulse/internal/ui/components"
	"github.com/leapstack-labs/datapulse/internal/ui/features/common"
	"github.com/leapstack-labs/datapulse/internal/ui/workspace"
)

const scrollScript = "document.getElementById('chat-end')?.scrollIntoView({behavior: 'smooth'})"

// Handlers provides HTTP handlers for the chat feature.
type Handlers struct {
	deps common.Deps
	logs *workspace.Store[chatlog.Log]
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{
		deps: deps,
		logs: workspace.NewStore(func() *chatlog.Log { return chatlog.New() }),
	}
}

func (h *Handlers) log(w http.ResponseWriter, r *http.Request) (*chatlog.Log, bool) {
	id, err := workspace.SessionID(w, r, h.deps.SessionStore)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return h.logs.Get(id), true
}

// messageSignals carries the composer input.
type messageSignals struct {
	Message string `json:"message"`
}

// ChatPage mounts the page with a fresh conversation.
func (h *Handlers) ChatPage(w http.ResponseWriter, r *http.Request) {
	l, ok := h.log(w, r)
	if !ok {
		return
	}
	l.Reset()

	page := components.Page{Title: "AI Chat", CurrentPath: "/chat", IsDev: h.deps.IsDev}
	if err := components.Layout(page, PageView(l)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Send appends the user's message, shows the typing indicator and waits for
// the reply. Blank input and sends while a reply is pending do nothing.
func (h *Handlers) Send(w http.ResponseWriter, r *http.Request) {
	l, ok := h.log(w, r)
	if !ok {
		return
	}

	var signals messageSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)

	ticket, err := l.Begin(signals.Message)
	if errors.Is(err, chatlog.ErrBlank) || errors.Is(err, chatlog.ErrBusy) {
		return
	}
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	h.patch(sse, l, true)

	reply, err := h.deps.Catalog.AskChat(r.Context(), ticket.Text)
	if err != nil {
		h.deps.Log().Warn("chat request failed", slog.String("error", err.Error()))
	}
	if !l.Complete(ticket, reply, err) {
		h.deps.Log().Debug("dropping reply for a reset conversation", slog.String("message", ticket.ID))
		return
	}

	h.patch(sse, l, false)
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, l *chatlog.Log, clearInput bool) {
	signals := map[string]any{"chatBusy": l.Busy()}
	if clearInput {
		signals["message"] = ""
	}
	if err := sse.MarshalAndPatchSignals(signals); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(LogView(l)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(SuggestionsView(l)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.ExecuteScript(scrollScript)
}
