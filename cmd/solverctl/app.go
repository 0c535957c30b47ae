package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/angeloszaimis/solver-dispatch/config"
	"github.com/angeloszaimis/solver-dispatch/internal/circuitbreaker"
	"github.com/angeloszaimis/solver-dispatch/internal/cube"
	"github.com/angeloszaimis/solver-dispatch/internal/dispatch"
	"github.com/angeloszaimis/solver-dispatch/internal/httpserver"
	"github.com/angeloszaimis/solver-dispatch/internal/local"
	"github.com/angeloszaimis/solver-dispatch/internal/metrics"
	"github.com/angeloszaimis/solver-dispatch/internal/remote"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

const metricsBufferSize = 1024

// app owns the long-lived pieces: one engine and one breaker registry shared
// by the facades built for every request.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	engine    *local.Engine
	breakers  *circuitbreaker.Registry
	collector *metrics.Collector
}

type solveResult struct {
	Moves  []string `json:"moves"`
	Source string   `json:"source"`
}

type solveFailure struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func newApp(cfg *config.Config, log *slog.Logger, computer solver.Computer) (*app, error) {
	breakers := circuitbreaker.NewRegistry(cfg.Breaker.Threshold, cfg.Breaker.ResetTimeout)
	collector := metrics.NewCollector(metricsBufferSize, log, breakers)

	engine, err := local.NewEngine(computer, cfg.Cache.Capacity,
		local.WithLogger(log),
		local.WithMetrics(collector),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       log,
		engine:    engine,
		breakers:  breakers,
		collector: collector,
	}, nil
}

// facade builds a per-request facade. The remote client is cheap; its
// breaker comes from the shared registry.
func (a *app) facade() *dispatch.Facade {
	opts := []dispatch.Option{
		dispatch.WithLogger(a.log),
		dispatch.WithMetrics(a.collector),
	}

	endpoint := a.cfg.RemoteEndpoint()
	if endpoint == "" {
		return dispatch.New(a.engine, nil, opts...)
	}

	client := remote.New(remote.Config{
		Endpoint:   endpoint,
		Timeout:    a.cfg.Remote.Timeout,
		MaxRetries: a.cfg.Remote.MaxRetries,
	}, a.breakers.GetBreaker(endpoint),
		remote.WithLogger(a.log),
		remote.WithMetrics(a.collector),
	)
	return dispatch.New(a.engine, client, opts...)
}

// solve validates one raw state and dispatches it. Every failure comes back
// as a solveFailure: a validation code, unsolvable for a state the solver
// rejected, or the error kind otherwise.
func (a *app) solve(ctx context.Context, raw string) (*solveResult, *solveFailure) {
	req, err := cube.Validate(raw)
	if err != nil {
		return nil, &solveFailure{Error: cube.Code(err), Detail: err.Error()}
	}

	ctx, cancel := dispatch.WithDeadline(ctx, a.cfg.Dispatch.Deadline)
	defer cancel()

	moves, source, err := a.facade().Dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, solver.ErrUnsolvable) {
			return nil, &solveFailure{Error: cube.CodeUnsolvable, Detail: err.Error()}
		}
		kind := solver.KindOf(err)
		if kind == 0 {
			kind = solver.KindCompute
		}
		return nil, &solveFailure{Error: kind.String(), Detail: err.Error()}
	}

	if moves == nil {
		moves = solver.Moves{}
	}
	return &solveResult{Moves: moves, Source: source.String()}, nil
}

// serveOps runs the ops server until ctx ends when a metrics address is
// configured. The returned wait blocks until the server has stopped.
func (a *app) serveOps(ctx context.Context) (wait func(), err error) {
	if a.cfg.Metrics.Address == "" {
		return func() {}, nil
	}

	router := httpserver.NewOpsRouter(a.collector.Handler(), a.breakers)
	srv, err := httpserver.New(a.cfg.Metrics.Address, router, a.log)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			a.log.Error("Ops server failed", slog.String("error", err.Error()))
		}
	}()
	return wg.Wait, nil
}
