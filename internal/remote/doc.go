// Package remote calls the external solver service over HTTP.
//
// A Client posts {"state": "..."} and expects {"moves": ["R", "U'", ...]}.
// Every Solve consults a circuit breaker once, then runs a bounded retry
// loop with exponential backoff, reporting each attempt to the breaker.
// Failures are classified with the solver error kinds:
//
//   - Disabled: no endpoint configured, nothing is sent
//   - CircuitOpen: the breaker rejected the call, nothing is sent
//   - Unavailable: the service answered with an error status
//   - Unreachable: transport error, timeout, or retries exhausted
//   - Malformed: the response body did not carry a moves array
//
// Logs identify requests by fingerprint only.
package remote
