// Package dispatch routes a solve request to the remote solver when one is
// attached and falls back to the local engine otherwise.
//
// The first remote failure detaches the remote from that Facade for good;
// later dispatches on the same Facade go straight to the local engine.
// Callers that want the circuit breaker alone to decide remote eligibility
// use WithBreakerOnlyGating.
package dispatch
