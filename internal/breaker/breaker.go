// Package breaker implements a consecutive-failure circuit breaker used to
// guard calls to the narrative completion endpoint.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"acsim/internal/logger"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// Option customises a Breaker.
type Option func(*Breaker)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *logger.Logger) Option {
	return func(b *Breaker) { b.log = l.Named("breaker") }
}

// WithStateHook registers fn to be called after every state transition.
func WithStateHook(fn func(name string, to State)) Option {
	return func(b *Breaker) { b.onState = fn }
}

// WithProbe sets a check run before the first call after the reset timeout.
func WithProbe(probe func(ctx context.Context) error) Option {
	return func(b *Breaker) { b.probe = probe }
}

func withClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

type Breaker struct {
	name    string
	cfg     Config
	log     *logger.Logger
	probe   func(ctx context.Context) error
	onState func(name string, to State)
	now     func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func New(name string, cfg Config, opts ...Option) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}
	b := &Breaker{
		name:  name,
		cfg:   cfg,
		log:   logger.Nop(),
		now:   time.Now,
		state: Closed,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log.Infow("breaker created", "name", name, "max_failures", cfg.MaxFailures, "reset_timeout", cfg.ResetTimeout.String())
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs op unless the breaker is open. The failure that trips the
// breaker is returned wrapped together with ErrOpen. While open, calls fail fast
// with ErrOpen until ResetTimeout passes; the next call then runs in
// half-open mode and its outcome closes or reopens the breaker. Only one
// caller is admitted while half-open.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	halfOpen, err := b.admit()
	if err != nil {
		return err
	}
	if halfOpen {
		return b.trial(ctx, op)
	}

	if err := op(ctx); err != nil {
		if b.recordFailure(err) {
			return fmt.Errorf("%w: %w", ErrOpen, err)
		}
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) admit() (halfOpen bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return false, nil
	case HalfOpen:
		return false, ErrOpen
	}
	if since := b.now().Sub(b.openedAt); since < b.cfg.ResetTimeout {
		b.log.Debugw("breaker fast fail", "name", b.name, "since_open", since.String())
		return false, ErrOpen
	}
	b.transitionLocked(HalfOpen)
	return true, nil
}

func (b *Breaker) trial(ctx context.Context, op func(ctx context.Context) error) error {
	if b.probe != nil {
		if err := b.probe(ctx); err != nil {
			b.log.Warnw("breaker probe failed", "name", b.name, "error", err)
			b.reopen()
			return fmt.Errorf("%w: probe: %w", ErrOpen, err)
		}
	}
	if err := op(ctx); err != nil {
		b.log.Warnw("half-open call failed", "name", b.name, "error", err)
		b.reopen()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) reopen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.openedAt = b.now()
	b.transitionLocked(Open)
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.transitionLocked(Closed)
}

// recordFailure reports whether this failure opened the breaker.
func (b *Breaker) recordFailure(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.log.Warnw("guarded call failed", "name", b.name, "failures", b.failures, "error", err)
	if b.state == Closed && b.failures >= b.cfg.MaxFailures {
		b.openedAt = b.now()
		b.transitionLocked(Open)
		return true
	}
	return false
}

func (b *Breaker) transitionLocked(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.log.Infow("breaker state changed", "name", b.name, "from", from.String(), "to", to.String())
	if b.onState != nil {
		b.onState(b.name, to)
	}
}
