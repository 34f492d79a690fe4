package connections

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/datapulse/internal/search"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// FormStatus is the add-connection form's position in its lifecycle:
// closed -> editing -> submitting -> closed on success, or back to editing
// with an alert on failure.
type FormStatus int

// Form states.
const (
	FormClosed FormStatus = iota
	FormEditing
	FormSubmitting
)

func (s FormStatus) String() string {
	switch s {
	case FormEditing:
		return "editing"
	case FormSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// State is one browser's connections page.
type State struct {
	mu sync.Mutex

	generation  uint64
	loading     bool
	loadErr     string
	connections []core.DatabaseConnection
	query       string

	form        FormStatus
	fieldErrors map[string]string
	alert       string
}

// NewState returns an unmounted page.
func NewState() *State {
	return &State{}
}

// Snapshot is an immutable copy of State for rendering.
type Snapshot struct {
	Generation  uint64
	Loading     bool
	LoadErr     string
	Connections []core.DatabaseConnection
	Visible     []core.DatabaseConnection
	Query       string
	Form        FormStatus
	FieldErrors map[string]string
	Alert       string
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *State) snapshot() Snapshot {
	conns := slices.Clone(s.connections)
	return Snapshot{
		Generation:  s.generation,
		Loading:     s.loading,
		LoadErr:     s.loadErr,
		Connections: conns,
		Visible:     search.Connections(conns, s.query),
		Query:       s.query,
		Form:        s.form,
		FieldErrors: maps.Clone(s.fieldErrors),
		Alert:       s.alert,
	}
}

// Mount resets the page for a fresh visit and returns the new generation.
func (s *State) Mount(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.loading = true
	s.loadErr = ""
	s.connections = nil
	s.query = strings.TrimSpace(query)
	s.form = FormClosed
	s.fieldErrors = nil
	s.alert = ""
	return s.generation
}

// Loaded records the fetch result for gen. It reports false when gen is stale.
func (s *State) Loaded(gen uint64, conns []core.DatabaseConnection, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.loading = false
	if err != nil {
		s.loadErr = err.Error()
		return true
	}
	s.loadErr = ""
	s.connections = conns
	return true
}

// Search sets the list filter.
func (s *State) Search(query string) {
	s.mu.Lock()
	s.query = strings.TrimSpace(query)
	s.mu.Unlock()
}

// Open shows an empty form. It does nothing while a submit is in flight.
func (s *State) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == FormSubmitting {
		return
	}
	s.form = FormEditing
	s.fieldErrors = nil
	s.alert = ""
}

// Close hides the form unless a submit is in flight. It reports whether the
// form closed.
func (s *State) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == FormSubmitting {
		return false
	}
	s.form = FormClosed
	s.fieldErrors = nil
	s.alert = ""
	return true
}

// Submission is an accepted submit; Finish must be called with its outcome.
type Submission struct {
	Generation uint64
	Draft      core.ConnectionDraft
}

// ErrSubmitting is returned by Submit while another submit is in flight.
var ErrSubmitting = errors.New("a connection attempt is already in progress")

// Submit validates draft. An invalid draft stays in editing with field
// errors and the returned error is the *core.ValidationError. A valid draft
// moves the form to submitting.
func (s *State) Submit(draft core.ConnectionDraft) (Submission, error) {
	draft = draft.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form == FormSubmitting {
		return Submission{}, ErrSubmitting
	}
	s.alert = ""
	if err := draft.Validate(); err != nil {
		s.form = FormEditing
		s.fieldErrors = fieldErrors(err)
		return Submission{}, err
	}

	s.form = FormSubmitting
	s.fieldErrors = nil
	return Submission{Generation: s.generation, Draft: draft}, nil
}

// Finish records a submit outcome. On success the connection is appended and
// the form closed; on failure the form returns to editing with alert. It
// reports false when the page was remounted since the submit.
func (s *State) Finish(sub Submission, conn core.DatabaseConnection, err error, alert string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.Generation != s.generation {
		return false
	}
	if err != nil {
		s.form = FormEditing
		s.alert = alert
		if fields := fieldErrors(err); len(fields) > 0 {
			s.fieldErrors = fields
		}
		return true
	}

	s.connections = append(s.connections, conn)
	s.form = FormClosed
	s.fieldErrors = nil
	s.alert = ""
	return true
}

func fieldErrors(err error) map[string]string {
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return maps.Clone(ve.Fields)
}

// FormSignals are the datastar signals bound to the form and search box.
type FormSignals struct {
	Name     string    `json:"connName"`
	Type     string    `json:"connType"`
	Host     string    `json:"connHost"`
	Port     PortValue `json:"connPort"`
	Username string    `json:"connUsername"`
	Database string    `json:"connDatabase"`
	Password string    `json:"connPassword"`
	Search   string    `json:"search"`
}

// Draft converts the signals to a connection draft.
func (f FormSignals) Draft() core.ConnectionDraft {
	return core.ConnectionDraft{
		Name:     f.Name,
		Type:     core.SourceType(f.Type),
		Host:     f.Host,
		Port:     core.ParsePort(string(f.Port)),
		Username: f.Username,
		Database: f.Database,
		Password: f.Password,
	}
}

// DefaultSignals is the form's initial signal state.
func DefaultSignals() map[string]any {
	return map[string]any{
		"connName":     "",
		"connType":     string(core.SourceSnowflake),
		"connHost":     "",
		"connPort":     strconv.Itoa(core.SourceSnowflake.DefaultPort()),
		"connUsername": "",
		"connDatabase": "",
		"connPassword": "",
	}
}

// PortValue accepts a port sent as either a JSON string or number.
type PortValue string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PortValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PortValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	*p = PortValue(n.String())
	return nil
}
