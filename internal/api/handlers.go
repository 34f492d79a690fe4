// Package api serves the catalog as a JSON API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handlers serves the JSON API.
type Handlers struct {
	catalog   core.Catalog
	publisher events.Publisher
	onChange  func()
	logger    *slog.Logger
}

// NewHandlers creates the API handlers. onChange, when not nil, runs after a
// connection is created.
func NewHandlers(catalog core.Catalog, publisher events.Publisher, onChange func(), logger *slog.Logger) *Handlers {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Handlers{catalog: catalog, publisher: publisher, onChange: onChange, logger: logger}
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// Routes returns the API router, to be mounted at /api/v1.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/connections", h.ListConnections)
	r.Post("/connections", h.CreateConnection)
	r.Get("/tables", h.ListTables)
	r.Get("/tables/{id}", h.GetTable)
	r.Get("/stats", h.GetStats)
	r.Post("/chat", h.Chat)
	r.NotFound(NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, "method_not_allowed", "method not allowed", nil, http.StatusMethodNotAllowed)
	})
	return r
}

// NotFound answers unmatched API paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, core.CodeNotFound, "no route for "+r.URL.Path, nil, http.StatusNotFound)
}

// ListConnections handles GET /connections.
func (h *Handlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.catalog.GetConnections(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, conns, http.StatusOK)
}

// CreateConnection handles POST /connections.
func (h *Handlers) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var draft core.ConnectionDraft
	if err := decodeBody(w, r, &draft); err != nil {
		WriteError(w, CodeBadRequest, err.Error(), nil, http.StatusBadRequest)
		return
	}

	conn, err := h.catalog.ConnectDatabase(r.Context(), draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.publisher.Publish(r.Context(), events.ConnectionCreated(conn)); err != nil {
		h.logger.Warn("failed to publish event", slog.String("error", err.Error()))
	}
	if h.onChange != nil {
		h.onChange()
	}

	WriteJSON(w, conn, http.StatusCreated)
}

// ListTables handles GET /tables.
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.catalog.GetTables(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, tables, http.StatusOK)
}

// GetTable handles GET /tables/{id}.
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetTableDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, detail, http.StatusOK)
}

// GetStats handles GET /stats.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetDashboardStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, stats, http.StatusOK)
}

// Chat handles POST /chat.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, CodeBadRequest, err.Error(), nil, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, CodeBadRequest, "message is required", nil, http.StatusBadRequest)
		return
	}

	reply, err := h.catalog.AskChat(r.Context(), req.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, reply, http.StatusOK)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := core.ErrorCode(err)
	if code == core.CodeInternal {
		h.logger.Error("api request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	WriteCatalogError(w, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}
