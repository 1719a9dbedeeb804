package ratelimit

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Limiter blocks the caller before a network-sensitive action.
type Limiter interface {
	Wait(ctx context.Context) error
	SetDelay(min, max time.Duration)
}

// Throttle sleeps for a duration drawn uniformly from [min, max] on every
// Wait, breaking up the request cadence so it looks less like a bot.
type Throttle struct {
	minDelay time.Duration
	maxDelay time.Duration
	mu       sync.Mutex
	logger   *slog.Logger
}

func NewThrottle(minDelay, maxDelay time.Duration) *Throttle {
	return &Throttle{
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   slog.Default().With("component", "throttle"),
	}
}

// Wait blocks for the drawn delay or until ctx is cancelled. It has no
// failure mode of its own; the only error it returns is ctx.Err().
func (t *Throttle) Wait(ctx context.Context) error {
	delay := t.drawDelay()
	t.logger.Debug("applying random delay", "delay", delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (t *Throttle) SetDelay(min, max time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.minDelay = min
	t.maxDelay = max
}

func (t *Throttle) drawDelay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.maxDelay <= t.minDelay {
		return t.minDelay
	}

	jitter := time.Duration(rand.Int63n(int64(t.maxDelay - t.minDelay)))
	return t.minDelay + jitter
}
