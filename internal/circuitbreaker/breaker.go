package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by BeforeCall while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Blocking requests
	StateHalfOpen              // Testing with one request
)

type Option func(*CircuitBreaker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) {
		cb.now = now
	}
}

type CircuitBreaker struct {
	mutex            sync.Mutex
	state            State
	failures         int
	openedAt         time.Time
	probeInFlight    bool
	probeStartedAt   time.Time
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
}

func NewCircuitBreaker(threshold int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}

	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		resetTimeout:     timeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// BeforeCall must be called before every guarded call. It fails with
// ErrCircuitOpen while the breaker is open, and while a half-open probe is
// already in flight. Open turns into HalfOpen lazily, on the first call
// after the reset timeout. A probe that has not reported back within another
// reset timeout is considered lost and a new one is let through.
func (cb *CircuitBreaker) BeforeCall() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.startProbe()
		return nil
	case StateHalfOpen:
		if cb.probeInFlight && cb.now().Sub(cb.probeStartedAt) < cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.startProbe()
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.trip()
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.trip()
		}
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.probeInFlight = false
	cb.state = StateClosed
}

func (cb *CircuitBreaker) startProbe() {
	cb.probeInFlight = true
	cb.probeStartedAt = cb.now()
}

// trip moves to Open. Caller holds the mutex.
func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.probeInFlight = false
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Failures returns the consecutive failures counted in the current closed window.
func (cb *CircuitBreaker) Failures() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.failures
}

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}
