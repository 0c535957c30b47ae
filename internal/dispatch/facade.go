package dispatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/angeloszaimis/solver-dispatch/internal/metrics"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

// Remote is satisfied by *remote.Client.
type Remote interface {
	Solve(ctx context.Context, req solver.Request) (solver.Moves, error)
}

// Local is satisfied by *local.Engine.
type Local interface {
	Lookup(req solver.Request) (solver.Moves, bool)
	Solve(ctx context.Context, req solver.Request) (solver.Moves, error)
}

type Facade struct {
	remote      Remote
	local       Local
	detached    atomic.Bool
	breakerOnly bool
	localSlot   *semaphore.Weighted
	logger      *slog.Logger
	sink        metrics.Sink
}

type Option func(*Facade)

// WithBreakerOnlyGating keeps the remote attached after failures and leaves
// eligibility to the remote's circuit breaker.
func WithBreakerOnlyGating() Option {
	return func(f *Facade) {
		f.breakerOnly = true
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger.OrDiscard(l)
	}
}

func WithMetrics(sink metrics.Sink) Option {
	return func(f *Facade) {
		f.sink = sink
	}
}

// New builds a facade over a local engine. Pass a nil remote to solve
// locally only. Facades sharing one engine share its cache.
func New(local Local, remote Remote, opts ...Option) *Facade {
	f := &Facade{
		remote:    remote,
		local:     local,
		localSlot: semaphore.NewWeighted(1),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dispatch returns the moves solving req and which backend produced them.
// Remote failures never reach the caller; a local failure is returned as a
// KindCompute error.
func (f *Facade) Dispatch(ctx context.Context, req solver.Request) (solver.Moves, solver.Provenance, error) {
	if f.RemoteAttached() {
		moves, err := f.remote.Solve(ctx, req)
		if err == nil {
			f.emitDispatched(solver.ProvenanceRemote)
			return moves, solver.ProvenanceRemote, nil
		}
		f.fallback(req, err)
	}

	moves, err := f.solveLocal(ctx, req)
	if err != nil {
		return nil, "", err
	}
	f.emitDispatched(solver.ProvenanceLocal)
	return moves, solver.ProvenanceLocal, nil
}

// RemoteAttached reports whether the next dispatch will try the remote.
func (f *Facade) RemoteAttached() bool {
	return f.remote != nil && !f.detached.Load()
}

func (f *Facade) fallback(req solver.Request, err error) {
	kind := solver.KindOf(err)
	if kind == 0 {
		kind = solver.KindUnreachable
	}

	f.logger.Warn("Remote solver failed, falling back to local engine",
		slog.String("fingerprint", solver.Fingerprint(req)),
		slog.String("kind", kind.String()),
		slog.String("error", err.Error()))

	if !f.breakerOnly && f.detached.CompareAndSwap(false, true) {
		f.logger.Info("Remote solver detached",
			slog.String("fingerprint", solver.Fingerprint(req)))
	}

	metrics.Emit(f.sink, metrics.Event{
		Type:    metrics.EventFallback,
		Outcome: kind.String(),
	})
}

// solveLocal serves cache hits without waiting on the facade's slot; a miss
// holds the slot for the whole local solve.
func (f *Facade) solveLocal(ctx context.Context, req solver.Request) (solver.Moves, error) {
	if moves, ok := f.local.Lookup(req); ok {
		metrics.Emit(f.sink, metrics.Event{Type: metrics.EventCacheHit})
		return moves, nil
	}

	if err := f.localSlot.Acquire(ctx, 1); err != nil {
		return nil, solver.NewError(solver.KindCompute, req, err)
	}
	defer f.localSlot.Release(1)

	moves, err := f.local.Solve(ctx, req)
	if err != nil {
		if solver.KindOf(err) != solver.KindCompute {
			err = solver.NewError(solver.KindCompute, req, err)
		}
		return nil, err
	}
	return moves, nil
}

func (f *Facade) emitDispatched(p solver.Provenance) {
	f.logger.Debug("Request dispatched", slog.String("provenance", p.String()))
	metrics.Emit(f.sink, metrics.Event{
		Type:       metrics.EventDispatched,
		Provenance: p.String(),
	})
}

// WithDeadline bounds ctx by d when d is positive. The returned cancel must
// always be called.
func WithDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
