package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/datapulse/pkg/core"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{15420, "15,420"},
		{2515420, "2,515,420"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in))
	}
	assert.Equal(t, "1,000", FormatCount(1000))
}

func TestConnectionFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &core.ConnectionError{Kind: core.ConnAuthFailed}, "authentication failed"},
		{"unreachable", &core.ConnectionError{Kind: core.ConnUnreachable}, "host unreachable"},
		{"timeout", &core.ConnectionError{Kind: core.ConnTimeout}, "timed out"},
		{"other", errors.New("boom"), "Failed to connect: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ConnectionFailure(tt.err), tt.want)
		})
	}
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, "success", StatusBadge(core.StatusConnected))
	assert.Equal(t, "destructive", StatusBadge(core.StatusDisconnected))
	assert.Equal(t, "destructive", StatusBadge(core.StatusError))
}
