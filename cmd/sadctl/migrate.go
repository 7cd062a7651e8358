package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sad/backend/pkg/database"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return database.RunMigrations(sqlDB, e.logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return database.RollbackMigrations(sqlDB, steps, e.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.openDB(); err != nil {
				return err
			}
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			v, dirty, err := database.MigrationVersion(sqlDB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d", v)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}
