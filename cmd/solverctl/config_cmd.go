package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/solver-dispatch/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, kv := range settings(cfg) {
				fmt.Fprintf(w, "%s\t%v\n", kv.key, kv.value)
			}
			return w.Flush()
		},
	}
}

type setting struct {
	key   string
	value any
}

func settings(cfg *config.Config) []setting {
	return []setting{
		{"environment", cfg.Environment},
		{"logging.level", cfg.Logging.Level},
		{"remote.enabled", cfg.Remote.Enabled},
		{"remote.url", cfg.Remote.URL},
		{"remote.timeout", cfg.Remote.Timeout},
		{"remote.max_retries", cfg.Remote.MaxRetries},
		{"breaker.threshold", cfg.Breaker.Threshold},
		{"breaker.reset_timeout", cfg.Breaker.ResetTimeout},
		{"cache.capacity", cfg.Cache.Capacity},
		{"local.command", cfg.Local.Command},
		{"local.args", cfg.Local.Args},
		{"local.timeout", cfg.Local.Timeout},
		{"dispatch.deadline", cfg.Dispatch.Deadline},
		{"metrics.address", cfg.Metrics.Address},
	}
}
