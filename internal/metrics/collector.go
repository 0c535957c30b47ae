package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type EventType string

const (
	EventDispatched    EventType = "dispatched"
	EventFallback      EventType = "fallback"
	EventRemoteAttempt EventType = "remote_attempt"
	EventCacheHit      EventType = "cache_hit"
	EventCacheMiss     EventType = "cache_miss"
)

// OutcomeSuccess is the Outcome of a remote attempt that returned moves.
const OutcomeSuccess = "success"

type Event struct {
	Type       EventType
	Timestamp  time.Time
	Provenance string
	Outcome    string
	Duration   time.Duration
}

// Sink receives metric events. Emit must never block the caller.
type Sink interface {
	Emit(Event)
}

// Emit forwards e to s unless s is nil.
func Emit(s Sink, e Event) {
	if s == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.Emit(e)
}

type Collector struct {
	eventCh chan Event
	metrics *Metrics
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewCollector(bufferSize int, logger *slog.Logger, breakers BreakerStats) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: NewMetrics(breakers),
		logger:  logger,
	}
}

// Emit queues the event without blocking; it is dropped when the buffer is full.
func (c *Collector) Emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
		c.metrics.DroppedEvents.Inc()
	}
}

func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

// Wait blocks until the goroutine started by Start has drained the queued
// events and returned. It returns at once if Start was never called.
func (c *Collector) Wait() {
	c.wg.Wait()
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventDispatched:
		c.metrics.Dispatches.WithLabelValues(event.Provenance).Inc()

	case EventFallback:
		c.metrics.Fallbacks.WithLabelValues(event.Outcome).Inc()

	case EventRemoteAttempt:
		c.metrics.RemoteAttempts.WithLabelValues(event.Outcome).Inc()
		c.metrics.RemoteLatency.Observe(event.Duration.Seconds())

	case EventCacheHit:
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()

	case EventCacheMiss:
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	default:
		c.logger.Debug("Ignoring unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
