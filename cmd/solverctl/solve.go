package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/solver-dispatch/config"
	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

func newSolveCmd(newComputer computerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "solve [state...]",
		Short: "Solve cube states given as arguments, or one per line on stdin",
		Long: `Solve validates every state and dispatches it, printing one JSON object
per state: {"moves": [...], "source": "remote|local"} on success or
{"error": "<code>", "detail": "..."} on failure.

Without arguments states are read from stdin until EOF. When
metrics.address is set the ops server runs for as long as the command does.

Examples:
  solverctl solve UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB
  cat states.txt | solverctl solve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, false, cfg.Environment)

			a, err := newApp(cfg, log, newComputer(cfg.Local))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			a.collector.Start(ctx)

			wait, err := a.serveOps(ctx)
			if err != nil {
				cancel()
				a.collector.Wait()
				return err
			}
			defer func() {
				cancel()
				wait()
				a.collector.Wait()
			}()

			var next func() (string, bool)
			if len(args) > 0 {
				next = sliceSource(args)
			} else {
				next = lineSource(cmd.InOrStdin())
			}

			return runSolve(ctx, a, next, cmd.OutOrStdout())
		},
	}
}

// runSolve writes one JSON line per state and fails if any state failed.
func runSolve(ctx context.Context, a *app, next func() (string, bool), out io.Writer) error {
	enc := json.NewEncoder(out)
	total, failed := 0, 0

	for {
		if ctx.Err() != nil {
			break
		}
		state, ok := next()
		if !ok {
			break
		}

		total++
		result, failure := a.solve(ctx, state)

		var err error
		if failure != nil {
			failed++
			err = enc.Encode(failure)
		} else {
			err = enc.Encode(result)
		}
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d states failed", failed, total)
	}
	return ctx.Err()
}

func sliceSource(states []string) func() (string, bool) {
	i := 0
	return func() (string, bool) {
		if i >= len(states) {
			return "", false
		}
		i++
		return states[i-1], true
	}
}

// lineSource yields non-blank lines from r.
func lineSource(r io.Reader) func() (string, bool) {
	scanner := bufio.NewScanner(r)
	return func() (string, bool) {
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				return line, true
			}
		}
		return "", false
	}
}
