// Package circuitbreaker guards the remote solver with a three-state breaker.
//
//   - CLOSED: calls pass through, consecutive failures are counted
//   - OPEN: calls fail fast with ErrCircuitOpen until the reset timeout elapses
//   - HALF-OPEN: a single probe is let through; its outcome closes or reopens
//
// There is no timer goroutine. The Open to Half-Open transition happens on the
// first BeforeCall after the reset timeout.
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(3, 30*time.Second)
//	cb := registry.GetBreaker("http://solver.internal/solve")
//	if err := cb.BeforeCall(); err != nil {
//	    return err
//	}
//	if err := call(); err != nil {
//	    cb.RecordFailure()
//	} else {
//	    cb.RecordSuccess()
//	}
package circuitbreaker
