package infra

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the advisory provider. The analyzer runs about once an hour, so the
// breaker counts failed generations (each already retried by RetryPolicy), not
// single HTTP attempts, and stays open for a cooldown measured in minutes.
//
//   closed    → every call goes through
//   open      → calls fail with ErrBreakerOpen until the cooldown has elapsed
//   half-open → exactly one probe call; success closes, failure reopens

// BreakerState is reported as is on /health.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// ErrBreakerOpen is returned without calling fn while the breaker is open or
// while a half-open probe is already in flight.
var ErrBreakerOpen = errors.New("advisory circuit breaker is open")

type BreakerConfig struct {
	Threshold int           // consecutive failures that open the breaker (default 3)
	Cooldown  time.Duration // time spent open before a probe (default 30m)
	Now       func() time.Time
}

// Breaker is safe for concurrent use.
type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	openedAt  time.Time
	probing   bool
	lastError error
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{cfg: cfg, state: BreakerClosed}
}

// State returns the current state, moving open to half-open once the
// cooldown has passed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// LastError is the failure that most recently counted against the breaker.
func (b *Breaker) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

// Call runs fn unless the breaker rejects it. A cancelled or expired ctx
// is the caller giving up, so it never counts as a provider failure.
func (b *Breaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(ctx, err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	switch b.state {
	case BreakerOpen:
		return ErrBreakerOpen
	case BreakerHalfOpen:
		if b.probing {
			return ErrBreakerOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	wasProbe := b.probing
	b.probing = false

	if err == nil {
		b.state = BreakerClosed
		b.failures = 0
		return
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}

	b.lastError = err
	b.failures++
	if wasProbe || b.failures >= b.cfg.Threshold {
		b.state = BreakerOpen
		b.openedAt = b.cfg.Now()
	}
}

// advance must be called with mu held.
func (b *Breaker) advance() {
	if b.state == BreakerOpen && b.cfg.Now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.probing = false
	}
}
