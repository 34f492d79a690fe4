package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ConnectionErrorKind classifies a failed connection attempt.
type ConnectionErrorKind string

// Connection failure kinds.
const (
	ConnAuthFailed  ConnectionErrorKind = "auth_failed"
	ConnUnreachable ConnectionErrorKind = "unreachable"
	ConnTimeout     ConnectionErrorKind = "timeout"
)

// ConnectionErrorKinds lists every failure kind.
var ConnectionErrorKinds = []ConnectionErrorKind{ConnAuthFailed, ConnUnreachable, ConnTimeout}

// ConnectionError reports a failed connection attempt.
type ConnectionError struct {
	Kind ConnectionErrorKind
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	var msg string
	switch e.Kind {
	case ConnAuthFailed:
		msg = "authentication failed"
	case ConnUnreachable:
		msg = "host unreachable"
	case ConnTimeout:
		msg = "connection timed out"
	default:
		msg = "connection failed"
	}
	if e.Host != "" {
		msg += " for " + e.Host
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is (or wraps) a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// ValidationError lists draft fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid connection draft: %s", strings.Join(names, ", "))
}

// Error codes shared with the JSON API.
const (
	CodeInvalidDraft = "invalid_draft"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal"
)

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	var ce *ConnectionError
	var ve *ValidationError
	switch {
	case errors.As(err, &ce):
		return string(ce.Kind)
	case errors.As(err, &ve):
		return CodeInvalidDraft
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
