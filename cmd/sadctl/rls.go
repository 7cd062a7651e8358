package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sad/backend/internal/ops"
)

func newRLSCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rls",
		Short: "Row-level security policies of the worker-scoped tables",
	}

	apply := &cobra.Command{
		Use:   "apply",
		Short: "(Re)create the policies; safe to run repeatedly",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			return ops.ApplyRLS(cmd.Context(), e.db, e.logger)
		},
	}

	var asJSON bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show which tables have RLS enabled and which policies exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			tables, err := ops.RLSStatus(cmd.Context(), e.db)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(tables)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tEXISTS\tENABLED\tFORCED\tPOLICIES\tOK")
			incomplete := 0
			for _, t := range tables {
				if !t.Complete() {
					incomplete++
				}
				fmt.Fprintf(tw, "%s\t%t\t%t\t%t\t%s\t%t\n",
					t.Table, t.Exists, t.Enabled, t.Forced, strings.Join(t.Policies, ","), t.Complete())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if incomplete > 0 {
				return fmt.Errorf("%d tables without complete row-level security, run `sadctl rls apply`", incomplete)
			}
			return nil
		},
	}
	status.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	cmd.AddCommand(apply, status)
	return cmd
}
