// Package simulate stands in for the network: artificial latency, randomized
// connection failures and a canned assistant.
package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/datapulse/pkg/core"
)

// Defaults mirror the behaviour of the hosted mock.
const (
	DefaultLatency     = 800 * time.Millisecond
	DefaultFailureRate = 0.1
)

// Delay waits for d or until ctx is done.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewRand returns a random source. A zero seed picks one from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // not security sensitive
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // simulation only
}

// Prober simulates a connection attempt against a draft's host.
type Prober struct {
	Latency     time.Duration
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProber creates a prober. failureRate is clamped to [0, 1].
func NewProber(latency time.Duration, failureRate float64, seed uint64) *Prober {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	return &Prober{
		Latency:     latency,
		FailureRate: failureRate,
		rng:         NewRand(seed),
	}
}

// Probe waits for the configured latency and then succeeds or fails with a
// typed *core.ConnectionError.
func (p *Prober) Probe(ctx context.Context, draft core.ConnectionDraft) error {
	if err := Delay(ctx, p.Latency); err != nil {
		return err
	}

	p.mu.Lock()
	fail := p.rng.Float64() < p.FailureRate
	kind := core.ConnectionErrorKinds[p.rng.IntN(len(core.ConnectionErrorKinds))]
	p.mu.Unlock()

	if !fail {
		return nil
	}

	host := fmt.Sprintf("%s:%d", draft.Host, draft.Port)
	return &core.ConnectionError{Kind: kind, Host: host}
}

// Responder produces the canned assistant reply.
type Responder struct {
	Latency time.Duration
	Now     func() time.Time
}

// NewResponder creates a responder with the given reply latency.
func NewResponder(latency time.Duration) *Responder {
	return &Responder{Latency: latency, Now: time.Now}
}

// Reply waits and then returns the assistant message for text.
func (r *Responder) Reply(ctx context.Context, text string) (core.ChatMessage, error) {
	if err := Delay(ctx, r.Latency); err != nil {
		return core.ChatMessage{}, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	return core.ChatMessage{
		ID:   uuid.NewString(),
		Role: core.RoleAssistant,
		Content: fmt.Sprintf("I understood your query about %q. Here is the data lineage for the CUSTOMERS table "+
			"showing upstream dependencies from the raw landing zone.", text),
		Timestamp: now().UnixMilli(),
	}, nil
}
