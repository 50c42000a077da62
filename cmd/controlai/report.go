package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/report"
	"github.com/controlai/controlai/internal/storage"
)

func reportCmd(a *app) *cobra.Command {
	var (
		email string
		year  int
		month int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a spending report for a year or a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := a.userByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}

			expenses := expense.NewService(a.storage, nil, a.logger)

			r, err := report.Generate(cmd.Context(), expenses, owner.ID(), year, month)
			if err != nil {
				return err
			}

			report.Render(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user to report on")
	cmd.Flags().IntVar(&year, "year", time.Now().UTC().Year(), "year to report on")
	cmd.Flags().IntVar(&month, "month", 0, "month to report on (1-12); omit for the whole year")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) userByEmail(ctx context.Context, email string) (storage.User, error) {
	u, err := a.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("unable to find user %s: %w", email, err)
	}
	return u, nil
}
