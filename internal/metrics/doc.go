// Package metrics collects dispatch metrics and exposes them to prometheus.
//
// Components emit Events through a Sink; the Collector queues them on a
// buffered channel and a single goroutine folds them into prometheus
// counters and histograms, so the request path never waits on metrics:
//   - Dispatches by provenance (remote or local)
//   - Fallbacks by remote failure kind
//   - Remote attempts by outcome, with attempt latency
//   - Local cache hits and misses
//
// Circuit breaker states are read from the breaker registry at scrape time.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger, breakers)
//	collector.Start(ctx)
//
//	metrics.Emit(collector, metrics.Event{
//		Type:       metrics.EventDispatched,
//		Provenance: "local",
//	})
//
//	mux.Handle("/metrics", collector.Handler())
//
// Cancelling the context drains queued events before the goroutine exits.
package metrics
