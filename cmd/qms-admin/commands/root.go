// Package commands implements the qms-admin subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/qmshub/api/internal/config"
	"github.com/qmshub/api/internal/infra/postgres"
	"github.com/qmshub/api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "qms-admin",
	Short:         "Operational CLI for the quality management API",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(orgCmd)
}

// setup loads configuration and opens the database for a subcommand.
func setup() (*config.Config, *postgres.DB, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "text"})

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, log, nil
}
