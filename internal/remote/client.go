package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/solver-dispatch/internal/circuitbreaker"
	"github.com/angeloszaimis/solver-dispatch/internal/metrics"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 2

	maxResponseBytes = 1 << 20
)

// Breaker is the part of *circuitbreaker.CircuitBreaker the client needs.
type Breaker interface {
	BeforeCall() error
	RecordSuccess()
	RecordFailure()
}

// Doer sends HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// Endpoint is the solve URL. Empty disables the client.
	Endpoint string
	// Timeout bounds each attempt, not the whole Solve.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
}

type Client struct {
	endpoint   string
	timeout    time.Duration
	maxRetries int
	backoff    Backoff
	breaker    Breaker
	http       Doer
	sleep      Sleeper
	logger     *slog.Logger
	sink       metrics.Sink
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.http = d
	}
}

func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.OrDiscard(l)
	}
}

func WithMetrics(sink metrics.Sink) Option {
	return func(c *Client) {
		c.sink = sink
	}
}

// New builds a client. A nil breaker gets a private one with default
// settings; share a breaker through circuitbreaker.Registry instead.
func New(cfg Config, breaker Breaker, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(3, 30*time.Second)
	}

	c := &Client{
		endpoint:   cfg.Endpoint,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    DefaultBackoff,
		breaker:    breaker,
		http:       http.DefaultClient,
		sleep:      sleepContext,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Solve asks the remote service for the moves solving req.
func (c *Client) Solve(ctx context.Context, req solver.Request) (solver.Moves, error) {
	if c.endpoint == "" {
		return nil, solver.NewError(solver.KindDisabled, req)
	}

	// An open circuit is a fast fail, never retried.
	if err := c.breaker.BeforeCall(); err != nil {
		return nil, solver.NewError(solver.KindCircuitOpen, req, err)
	}

	fingerprint := solver.Fingerprint(req)
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, c.abandon(req, lastErr, err)
		}

		start := time.Now()
		moves, err := c.attempt(ctx, req)
		c.emitAttempt(err, time.Since(start))

		if err == nil {
			c.breaker.RecordSuccess()
			return moves, nil
		}

		lastErr = err
		c.breaker.RecordFailure()
		c.logFailure(fingerprint, attempt, err)

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, c.backoff.Delay(attempt)); err != nil {
			return nil, c.abandon(req, lastErr, err)
		}
	}

	return nil, solver.NewError(solver.KindUnreachable, req, lastErr)
}

func (c *Client) abandon(req solver.Request, lastErr, ctxErr error) error {
	c.logger.Warn("Remote solver abandoned, caller deadline reached",
		slog.String("fingerprint", solver.Fingerprint(req)))
	return solver.NewError(solver.KindUnreachable, req, lastErr, ctxErr)
}

func (c *Client) attempt(ctx context.Context, req solver.Request) (solver.Moves, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := encodeRequest(string(req))
	if err != nil {
		return nil, solver.NewError(solver.KindUnreachable, req, fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, solver.NewError(solver.KindUnreachable, req, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, solver.NewError(solver.KindUnreachable, req, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e := solver.NewError(solver.KindUnavailable, req)
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, solver.NewError(solver.KindUnreachable, req, fmt.Errorf("read response: %w", err))
	}

	moves, err := decodeMoves(data)
	if err != nil {
		return nil, solver.NewError(solver.KindMalformed, req, err)
	}
	return moves, nil
}

func (c *Client) logFailure(fingerprint string, attempt int, err error) {
	attrs := []any{
		slog.String("fingerprint", fingerprint),
		slog.Int("attempt", attempt),
		slog.String("kind", solver.KindOf(err).String()),
	}

	var e *solver.Error
	if errors.As(err, &e) {
		if e.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", e.StatusCode))
		}
		if e.Err != nil {
			attrs = append(attrs, slog.String("error", e.Err.Error()))
		}
	}

	c.logger.Warn("Remote solver attempt failed", attrs...)
}

func (c *Client) emitAttempt(err error, d time.Duration) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = solver.KindOf(err).String()
	}
	metrics.Emit(c.sink, metrics.Event{
		Type:     metrics.EventRemoteAttempt,
		Outcome:  outcome,
		Duration: d,
	})
}
