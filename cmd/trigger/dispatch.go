package main

import (
	"context"

	"github.com/hn-digest/trigger/internal/trigger"
	"github.com/spf13/cobra"
)

// newDispatchCmd runs a single dispatch and exits non-zero on failure, for
// hosts that own the timer themselves (crontab, Kubernetes CronJob).
func newDispatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Start the workflow once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTPTimeout())
			defer cancel()
			return a.service.Dispatch(ctx, trigger.SourceCLI)
		},
	}
}
