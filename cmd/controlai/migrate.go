package main

import (
	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.storage.ApplyMigrations(cmd.Context(), a.logger); err != nil {
				return err
			}
			a.logger.Info("Migrations applied")
			return nil
		},
	}
}
