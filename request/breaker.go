package request

import (
	"context"
	"sync"
	"time"

	perrors "github.com/jmgilman/go/errors"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen fails requests without contacting the backend.
	BreakerOpen
	// BreakerHalfOpen lets a limited number of probes through.
	BreakerHalfOpen
)

// String returns the state name.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that open the breaker.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before probing.
	// Default: 30s
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds concurrent probes while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called on every transition.
	OnStateChange func(from, to BreakerState)

	// IsFailure decides whether an error counts against the backend.
	// Default: IsRetryable, so 4xx responses and validation errors never trip it.
	IsFailure func(err error) bool

	now func() time.Time
}

// Breaker stops sending requests to a backend that keeps failing.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: while open, Execute returns a permanent CodeUnavailable error
//     that wraps ErrBreakerOpen.
type Breaker struct {
	cfg BreakerConfig

	mu            sync.Mutex
	state         BreakerState
	failures      int
	openedAt      time.Time
	halfOpenCount int
}

// NewBreaker creates a closed Breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = IsRetryable
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Breaker{cfg: cfg}
}

// Execute runs op unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := op(ctx)
	b.after(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// Reset closes the breaker and clears its failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.halfOpenCount = 0
	b.transitionLocked(BreakerClosed)
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case BreakerOpen:
		return rejected()
	case BreakerHalfOpen:
		if b.halfOpenCount >= b.cfg.HalfOpenMaxRequests {
			return rejected()
		}
		b.halfOpenCount++
	}
	return nil
}

// rejected is permanent so read retries stop at an open breaker.
func rejected() error {
	err := perrors.Wrap(ErrBreakerOpen, perrors.CodeUnavailable, "backend unavailable")
	return perrors.WithClassification(err, perrors.ClassificationPermanent)
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil && b.cfg.IsFailure(err)
	switch b.state {
	case BreakerClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.openedAt = b.cfg.now()
			b.transitionLocked(BreakerOpen)
		}
	case BreakerHalfOpen:
		if failed {
			b.openedAt = b.cfg.now()
			b.transitionLocked(BreakerOpen)
			return
		}
		b.failures = 0
		b.transitionLocked(BreakerClosed)
	}
}

func (b *Breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && b.cfg.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		b.halfOpenCount = 0
		b.transitionLocked(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) transitionLocked(to BreakerState) {
	from := b.state
	b.state = to
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
