// Package search implements the case-insensitive substring filters used by
// the connection and table lists.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Fold returns s case-folded for comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Match reports whether any field contains query, ignoring case.
// A blank query matches everything.
func Match(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the items for which fields yields a match, preserving order.
// The input slice is never modified.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Match(query, fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}

// Connections filters connections by name or host.
func Connections(conns []core.DatabaseConnection, query string) []core.DatabaseConnection {
	return Filter(conns, query, func(c core.DatabaseConnection) []string {
		return []string{c.Name, c.Host}
	})
}

// Tables filters tables by name or schema.
func Tables(tables []core.TableSummary, query string) []core.TableSummary {
	return Filter(tables, query, func(t core.TableSummary) []string {
		return []string{t.Name, t.Schema}
	})
}
