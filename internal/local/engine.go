package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/angeloszaimis/solver-dispatch/internal/metrics"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

// DefaultCapacity matches the size of the in-process cache used when no
// configuration is supplied.
const DefaultCapacity = 256

var ErrInvalidCapacity = errors.New("cache capacity must be at least 1")

// Engine solves requests through a Computer and memoizes successful results.
// Failed computations are never cached.
type Engine struct {
	computer solver.Computer
	cache    *lru.Cache[solver.Request, solver.Moves]
	flight   singleflight.Group
	sink     metrics.Sink
	logger   *slog.Logger
}

type Option func(*Engine)

func WithMetrics(sink metrics.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.OrDiscard(l)
	}
}

func NewEngine(computer solver.Computer, capacity int, opts ...Option) (*Engine, error) {
	if computer == nil {
		return nil, errors.New("local engine requires a computer")
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	cache, err := lru.New[solver.Request, solver.Moves](capacity)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	e := &Engine{
		computer: computer,
		cache:    cache,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Lookup returns a cached result and marks it most recently used.
func (e *Engine) Lookup(req solver.Request) (solver.Moves, bool) {
	moves, ok := e.cache.Get(req)
	if !ok {
		return nil, false
	}
	return moves.Clone(), true
}

// Solve returns the cached result for req or computes it. Concurrent misses
// for the same request share one computation. When ctx ends first the caller
// gets a KindCompute error wrapping ctx.Err(); the computation keeps running
// and still populates the cache.
func (e *Engine) Solve(ctx context.Context, req solver.Request) (solver.Moves, error) {
	if moves, ok := e.Lookup(req); ok {
		metrics.Emit(e.sink, metrics.Event{Type: metrics.EventCacheHit})
		return moves, nil
	}
	metrics.Emit(e.sink, metrics.Event{Type: metrics.EventCacheMiss})

	if err := ctx.Err(); err != nil {
		return nil, solver.NewError(solver.KindCompute, req, err)
	}

	ch := e.flight.DoChan(string(req), func() (interface{}, error) {
		return e.compute(req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(solver.Moves).Clone(), nil
	case <-ctx.Done():
		return nil, solver.NewError(solver.KindCompute, req, ctx.Err())
	}
}

func (e *Engine) compute(req solver.Request) (solver.Moves, error) {
	raw, err := e.computer.Compute(string(req))
	if err != nil {
		e.logger.Warn("Local solve failed",
			slog.String("fingerprint", solver.Fingerprint(req)),
			slog.String("error", err.Error()))
		return nil, solver.NewError(solver.KindCompute, req, err)
	}

	moves := solver.Moves(raw).Clone()
	if moves == nil {
		moves = solver.Moves{}
	}

	// First insertion wins; a concurrent solve that raced us keeps its entry.
	if found, _ := e.cache.ContainsOrAdd(req, moves); found {
		if cached, ok := e.cache.Peek(req); ok {
			return cached, nil
		}
	}
	return moves, nil
}

// Contains reports whether req is cached without touching its recency.
func (e *Engine) Contains(req solver.Request) bool {
	return e.cache.Contains(req)
}

// Len returns the number of cached results.
func (e *Engine) Len() int {
	return e.cache.Len()
}
