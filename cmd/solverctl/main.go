package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/solver-dispatch/config"
	"github.com/angeloszaimis/solver-dispatch/internal/local"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(execComputer).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func execComputer(cfg config.LocalConfig) solver.Computer {
	c := local.NewExecComputer(cfg.Command, cfg.Args...)
	c.Timeout = cfg.Timeout
	return c
}
