package main

import (
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/solver-dispatch/config"
	"github.com/angeloszaimis/solver-dispatch/internal/solver"
)

// computerFactory builds the local solving capability from configuration.
type computerFactory func(config.LocalConfig) solver.Computer

func newRootCmd(newComputer computerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "solverctl",
		Short: "Solve cube states through the remote solver with a local fallback",
		Long: `solverctl dispatches cube states to the configured remote solver service
and falls back to the local solver binary when the remote is disabled,
rejected by its circuit breaker or failing.

Configuration is read from .env, config.yaml and SOLVER_* environment
variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(newSolveCmd(newComputer))
	root.AddCommand(newConfigCmd())

	return root
}
