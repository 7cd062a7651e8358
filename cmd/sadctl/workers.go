package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sad/backend/internal/ops"
)

func newWorkersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Worker maintenance",
	}

	var dryRun bool
	syncIDs := &cobra.Command{
		Use:   "sync-ids",
		Short: "Rewrite worker ids to the id of their linked login",
		Long: "For every worker linked to a login whose worker_id differs from the login id,\n" +
			"move the worker and its assignments, notifications, devices and settings to\n" +
			"the login id. Each worker runs in its own transaction; failures are reported\n" +
			"and the run continues.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			summary, err := ops.SyncWorkerIDs(cmd.Context(), e.db, dryRun, e.logger)
			if err != nil {
				return err
			}
			if err := printJSON(summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d workers failed", summary.Failed, summary.Found)
			}
			return nil
		},
	}
	syncIDs.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would change")

	cmd.AddCommand(syncIDs)
	return cmd
}
