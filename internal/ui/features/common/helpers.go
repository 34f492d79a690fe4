// Package common provides shared types and utilities for UI features.
package common

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 2,515,420.
func FormatCount[N ~int | ~int64](n N) string {
	return printer.Sprintf("%d", int64(n))
}

// Itoa converts an integer to a string.
func Itoa(n int) string {
	return strconv.Itoa(n)
}

// ConnectionFailure renders a connect error for the blocking alert.
func ConnectionFailure(err error) string {
	var ce *core.ConnectionError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case core.ConnAuthFailed:
			return "Failed to connect: authentication failed. Check the username and password."
		case core.ConnUnreachable:
			return "Failed to connect: host unreachable. Check the host and port."
		case core.ConnTimeout:
			return "Failed to connect: the connection timed out."
		}
	}
	return fmt.Sprintf("Failed to connect: %v", err)
}

// StatusBadge maps a connection status to a badge variant name.
func StatusBadge(status core.ConnectionStatus) string {
	if status == core.StatusConnected {
		return "success"
	}
	return "destructive"
}
