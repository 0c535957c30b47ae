package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one breaker per remote endpoint, so that short-lived
// clients built per request still share failure history.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
	opts      []Option
}

func NewRegistry(threshold int, timeout time.Duration, opts ...Option) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
		opts:      opts,
	}
}

func (r *Registry) GetBreaker(endpoint string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[endpoint]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[endpoint]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout, r.opts...)
	r.breakers[endpoint] = cb
	return cb
}

func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.breakers = make(map[string]*CircuitBreaker)
}

func (r *Registry) Stats() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]State, len(r.breakers))
	for endpoint, cb := range r.breakers {
		stats[endpoint] = cb.State()
	}
	return stats
}
