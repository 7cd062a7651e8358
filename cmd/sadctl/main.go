// Command sadctl runs maintenance tasks against the SAD database and tokens.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/config"
	"sad/backend/pkg/database"
	applogger "sad/backend/pkg/logger"
)

// env shared state built lazily by the subcommands that need it.
type env struct {
	configPath string

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func (e *env) loadConfig() error {
	if e.cfg != nil {
		return nil
	}
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	e.cfg, e.logger = cfg, logger
	return nil
}

func (e *env) openDB() error {
	if err := e.loadConfig(); err != nil {
		return err
	}
	if e.db != nil {
		return nil
	}
	db, err := database.NewDB(&e.cfg.Database, e.cfg.Log.Level, e.logger)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if e.logger != nil {
		e.logger.Sync()
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "sadctl",
		Short:         "Maintenance commands for the SAD backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(
		newMigrateCmd(e),
		newRLSCmd(e),
		newRepairCmd(e),
		newWorkersCmd(e),
		newTokenCmd(e),
		newNotifyCmd(e),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	e := &env{}
	err := newRootCmd(e).ExecuteContext(ctx)
	e.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
