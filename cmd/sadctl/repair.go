package main

import (
	"errors"

	"github.com/spf13/cobra"

	"sad/backend/internal/ops"
)

func newRepairCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Diagnose and repair the database",
	}

	var fix bool
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Report missing tables, columns and orphaned worker rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			report, err := ops.CheckSchema(cmd.Context(), e.db, fix, e.logger)
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.Healthy() {
				return errors.New("schema check found problems")
			}
			return nil
		},
	}
	schema.Flags().BoolVar(&fix, "fix", false, "create missing tables and columns")

	cmd.AddCommand(schema)
	return cmd
}
