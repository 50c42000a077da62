package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/controlai/controlai/internal/auth"
	"github.com/controlai/controlai/internal/user"
)

func purgeSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			authService := auth.NewService(a.storage, user.NewService(a.storage, a.logger), a.conf.Server.SessionTTL, a.logger)

			deleted, err := authService.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired sessions\n", deleted)
			return nil
		},
	}
}
