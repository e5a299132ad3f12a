package enrich

import (
	"context"
	"time"
)

// FixedDelayPacer waits a constant duration between batches. This is a
// courtesy rate limit against the carrier API, not a correctness
// requirement.
type FixedDelayPacer struct {
	Delay time.Duration
}

// Wait blocks for the configured delay or until ctx is cancelled.
func (p FixedDelayPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Delay):
		return nil
	}
}

// NoDelayPacer never waits. Use it in tests.
type NoDelayPacer struct{}

// Wait returns immediately.
func (NoDelayPacer) Wait(_ context.Context) error {
	return nil
}
