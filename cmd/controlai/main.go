package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/controlai/controlai/internal/config"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/storage/sqlite"
)

const defaultConfigPath = "controlai.yml"

// app holds what every subcommand needs. It is filled by the root
// PersistentPreRunE and released by PersistentPostRunE.
type app struct {
	configPath string
	conf       *config.Config
	logger     *logger.Logger
	storage    storage.Storage
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "controlai",
		Short:         "Personal expense tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file, YAML or TOML (default: $CONTROLAI_CONFIG or controlai.yml)")

	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(reportCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(purgeSessionsCmd(a))

	return rootCmd
}

func (a *app) init() error {
	// A missing .env is fine.
	_ = godotenv.Load()

	path := a.configPath
	if path == "" {
		path = os.Getenv("CONTROLAI_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}

	conf, err := config.Parse(path)
	if err != nil {
		return fmt.Errorf("unable to parse the configuration: %w", err)
	}
	a.conf = conf
	a.logger = logger.New(conf.Logger)

	a.logger.Debug("Using database", "source", conf.DB.Source)

	a.storage, err = sqlite.New(conf.DB)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	return nil
}

func (a *app) close() error {
	if a.storage == nil {
		return nil
	}

	if err := a.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
