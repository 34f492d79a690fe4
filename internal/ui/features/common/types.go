// Package common provides shared types and utilities for UI features.
package common

import (
	"log/slog"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/datapulse/internal/events"
	"github.com/leapstack-labs/datapulse/internal/ui/notifier"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Deps are the dependencies shared by every feature's handlers.
type Deps struct {
	Catalog      core.Catalog
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Publisher    events.Publisher
	Logger       *slog.Logger
	IsDev        bool
}

// Log returns the configured logger or the default one.
func (d Deps) Log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Events returns the configured publisher or a no-op one.
func (d Deps) Events() events.Publisher {
	if d.Publisher != nil {
		return d.Publisher
	}
	return events.Noop{}
}
