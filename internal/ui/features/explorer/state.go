package explorer

import (
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/datapulse/internal/search"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Tab is a detail pane tab.
type Tab string

// Detail tabs.
const (
	TabOverview Tab = "overview"
	TabColumns  Tab = "columns"
	TabPreview  Tab = "preview"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabOverview, TabColumns, TabPreview}

// ParseTab reports whether s names a tab.
func ParseTab(s string) (Tab, bool) {
	t := Tab(strings.ToLower(s))
	return t, slices.Contains(Tabs, t)
}

// State is one browser's explorer page.
type State struct {
	mu sync.Mutex

	generation uint64
	loading    bool
	loadErr    string
	tables     []core.TableSummary
	query      string

	selected      string
	selectSeq     uint64
	detail        *core.TableDetail
	detailLoading bool
	detailErr     string
	tab           Tab
}

// NewState returns an unmounted page.
func NewState() *State {
	return &State{tab: TabOverview}
}

// Snapshot is an immutable copy of State for rendering.
type Snapshot struct {
	Generation    uint64
	Loading       bool
	LoadErr       string
	Tables        []core.TableSummary
	Visible       []core.TableSummary
	Query         string
	Selected      string
	Detail        *core.TableDetail
	DetailLoading bool
	DetailErr     string
	Tab           Tab
}

// SelectedSummary returns the list entry for the selected table.
func (s Snapshot) SelectedSummary() (core.TableSummary, bool) {
	for _, t := range s.Tables {
		if t.ID == s.Selected {
			return t, true
		}
	}
	return core.TableSummary{}, false
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := slices.Clone(s.tables)
	snap := Snapshot{
		Generation:    s.generation,
		Loading:       s.loading,
		LoadErr:       s.loadErr,
		Tables:        tables,
		Visible:       search.Tables(tables, s.query),
		Query:         s.query,
		Selected:      s.selected,
		DetailLoading: s.detailLoading,
		DetailErr:     s.detailErr,
		Tab:           s.tab,
	}
	if s.detail != nil {
		d := *s.detail
		d.Columns = slices.Clone(d.Columns)
		snap.Detail = &d
	}
	return snap
}

// Mount resets the page for a fresh visit and returns the new generation.
func (s *State) Mount(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.loading = true
	s.loadErr = ""
	s.tables = nil
	s.query = strings.TrimSpace(query)
	s.selected = ""
	s.detail = nil
	s.detailLoading = false
	s.detailErr = ""
	s.tab = TabOverview
	return s.generation
}

// DetailTicket identifies one detail fetch.
type DetailTicket struct {
	Generation uint64
	Seq        uint64
	ID         string
}

// Loaded records the table list for gen and selects the first table. ok is
// false when gen is stale; fetch reports whether a detail fetch for ticket
// should start.
func (s *State) Loaded(gen uint64, tables []core.TableSummary, err error) (ticket DetailTicket, fetch, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return DetailTicket{}, false, false
	}
	s.loading = false
	if err != nil {
		s.loadErr = err.Error()
		return DetailTicket{}, false, true
	}
	s.tables = tables

	first := search.Tables(tables, s.query)
	if len(first) == 0 {
		first = tables
	}
	if len(first) == 0 {
		return DetailTicket{}, false, true
	}
	return s.selectLocked(first[0].ID), true, true
}

// Select marks id as selected. It returns false for an unknown table.
func (s *State) Select(id string) (DetailTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading || !slices.ContainsFunc(s.tables, func(t core.TableSummary) bool { return t.ID == id }) {
		return DetailTicket{}, false
	}
	return s.selectLocked(id), true
}

func (s *State) selectLocked(id string) DetailTicket {
	s.selectSeq++
	s.selected = id
	s.detail = nil
	s.detailLoading = true
	s.detailErr = ""
	return DetailTicket{Generation: s.generation, Seq: s.selectSeq, ID: id}
}

// DetailLoaded records a detail fetch. It reports false when a newer mount
// or selection has superseded t.
func (s *State) DetailLoaded(t DetailTicket, detail core.TableDetail, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Generation != s.generation || t.Seq != s.selectSeq {
		return false
	}
	s.detailLoading = false
	if err != nil {
		s.detailErr = err.Error()
		return true
	}
	s.detail = &detail
	return true
}

// SetTab switches the detail tab.
func (s *State) SetTab(t Tab) {
	s.mu.Lock()
	s.tab = t
	s.mu.Unlock()
}

// Search sets the list filter.
func (s *State) Search(query string) {
	s.mu.Lock()
	s.query = strings.TrimSpace(query)
	s.mu.Unlock()
}
