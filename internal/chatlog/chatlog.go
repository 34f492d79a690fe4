// Package chatlog holds the conversation state shared by the web chat page
// and the CLI chat command.
//
// A Log is append-only and ordered oldest first. At most one question is in
// flight at a time: Begin appends the user message as pending and hands back a
// Ticket, Complete reconciles the reply against the message the ticket names.
// Replies whose message has left the log (after Reset) are ignored.
package chatlog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Fixed assistant texts.
const (
	WelcomeMessage = "Hello! I can help you understand your database schema and data quality. Ask me anything!"
	Apology        = "Sorry, I encountered an error processing your request."
)

// Suggestions are offered while the log holds only the welcome message.
var Suggestions = []string{
	"Show me all table with 'user' in name",
	"Analyze data quality for ORDERS table",
	"Explain relationships between CUSTOMERS and ORDERS",
	"List tables with PII data",
}

var (
	// ErrBlank is returned by Begin for empty or whitespace-only input.
	ErrBlank = errors.New("message is blank")
	// ErrBusy is returned by Begin while a reply is outstanding.
	ErrBusy = errors.New("a reply is already pending")
)

// Status tracks the delivery of a user message.
type Status string

// Message statuses. Assistant messages are always confirmed.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Entry is a message in the log.
type Entry struct {
	core.ChatMessage
	Status Status
}

// Ticket identifies an outstanding question.
type Ticket struct {
	ID         string
	Text       string
	Generation uint64
}

// Asker answers questions.
type Asker interface {
	AskChat(ctx context.Context, text string) (core.ChatMessage, error)
}

// Log is a conversation. It is safe for concurrent use.
type Log struct {
	mu         sync.Mutex
	entries    []Entry
	pending    string
	generation uint64

	now   func() time.Time
	newID func() string
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDGenerator sets the id source for messages.
func WithIDGenerator(fn func() string) Option {
	return func(l *Log) { l.newID = fn }
}

// New returns a log holding only the welcome message.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	l.reset()
	return l
}

// Reset discards the conversation and starts over with the welcome message.
// Outstanding tickets become stale.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

func (l *Log) reset() {
	l.generation++
	l.pending = ""
	l.entries = []Entry{{
		ChatMessage: core.ChatMessage{
			ID:        "welcome",
			Role:      core.RoleAssistant,
			Content:   WelcomeMessage,
			Timestamp: l.now().UnixMilli(),
		},
		Status: StatusConfirmed,
	}}
}

// Generation returns the current reset count.
func (l *Log) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Busy reports whether a reply is outstanding.
func (l *Log) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != ""
}

// ShowSuggestions reports whether the suggestion list should be offered.
func (l *Log) ShowSuggestions() bool {
	return l.Len() == 1
}

// Begin appends text, as typed, as a pending user message. Text that is
// only whitespace is rejected with ErrBlank.
func (l *Log) Begin(text string) (Ticket, error) {
	if strings.TrimSpace(text) == "" {
		return Ticket{}, ErrBlank
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != "" {
		return Ticket{}, ErrBusy
	}

	id := l.newID()
	l.entries = append(l.entries, Entry{
		ChatMessage: core.ChatMessage{
			ID:        id,
			Role:      core.RoleUser,
			Content:   text,
			Timestamp: l.now().UnixMilli(),
		},
		Status: StatusPending,
	})
	l.pending = id

	return Ticket{ID: id, Text: text, Generation: l.generation}, nil
}

// Complete records the outcome for t. On success the user message is
// confirmed and reply appended; on failure it is marked failed and the
// apology appended. It reports false when t is stale and nothing changed.
func (l *Log) Complete(t Ticket, reply core.ChatMessage, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Generation != l.generation {
		return false
	}
	idx := l.indexOf(t.ID)
	if idx < 0 {
		return false
	}
	if l.pending == t.ID {
		l.pending = ""
	}

	if err != nil {
		l.entries[idx].Status = StatusFailed
		l.entries = append(l.entries, Entry{
			ChatMessage: core.ChatMessage{
				ID:        l.newID(),
				Role:      core.RoleAssistant,
				Content:   Apology,
				Timestamp: l.now().UnixMilli(),
			},
			Status: StatusConfirmed,
		})
		return true
	}

	l.entries[idx].Status = StatusConfirmed
	if reply.ID == "" || l.indexOf(reply.ID) >= 0 {
		reply.ID = l.newID()
	}
	if reply.Timestamp == 0 {
		reply.Timestamp = l.now().UnixMilli()
	}
	reply.Role = core.RoleAssistant
	l.entries = append(l.entries, Entry{ChatMessage: reply, Status: StatusConfirmed})
	return true
}

func (l *Log) indexOf(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Send runs one full exchange: Begin, ask, Complete. The returned error is
// ErrBlank, ErrBusy or the asker's failure; the log already reflects it.
func (l *Log) Send(ctx context.Context, asker Asker, text string) error {
	t, err := l.Begin(text)
	if err != nil {
		return err
	}
	reply, err := asker.AskChat(ctx, t.Text)
	l.Complete(t, reply, err)
	return err
}
