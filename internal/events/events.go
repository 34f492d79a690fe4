// Package events publishes catalog change notifications to a message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// SubjectPrefix is prepended to every event type to form the bus subject.
const SubjectPrefix = "datapulse."

// Event types.
const (
	TypeConnectionCreated = "connection.created"
	TypeCatalogReloaded   = "catalog.reloaded"
)

// Event is a single notification.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data,omitempty"`
}

// Subject returns the bus subject for the event.
func (e Event) Subject() string {
	return SubjectPrefix + e.Type
}

// Encode returns the JSON payload.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	return data, nil
}

// ConnectionCreated builds the event for a newly created connection.
func ConnectionCreated(conn core.DatabaseConnection) Event {
	return Event{Type: TypeConnectionCreated, Time: time.Now().UTC(), Data: conn}
}

// ReloadSummary is the payload of a catalog.reloaded event.
type ReloadSummary struct {
	Source      string `json:"source"`
	Connections int    `json:"connections"`
	Tables      int    `json:"tables"`
}

// CatalogReloaded builds the event for a dataset reload.
func CatalogReloaded(summary ReloadSummary) Event {
	return Event{Type: TypeCatalogReloaded, Time: time.Now().UTC(), Data: summary}
}

// Publisher sends events to a bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
