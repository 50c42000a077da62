package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/export"
	"github.com/controlai/controlai/internal/util"
)

func exportCmd(a *app) *cobra.Command {
	var (
		email  string
		output string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's expenses to an .xlsx or .csv file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := a.userByEmail(ctx, email)
			if err != nil {
				return err
			}

			fromDate, err := util.ParseDate(from, false)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			toDate, err := util.ParseDate(to, true)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			expenses := expense.NewService(a.storage, nil, a.logger)

			list, err := expenses.List(ctx, owner.ID(), fromDate, toDate)
			if err != nil {
				return err
			}

			categories, err := category.NewService(a.storage, a.logger).List(ctx, owner.ID())
			if err != nil {
				return err
			}

			series, err := expenses.YearSeries(ctx, owner.ID(), toDate.Year())
			if err != nil {
				return err
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("unable to create %s: %w", output, err)
			}
			defer file.Close()

			data := export.Data{Expenses: list, Categories: categories, Series: series}

			if strings.EqualFold(filepath.Ext(output), ".csv") {
				err = export.CSV(file, data)
			} else {
				err = export.XLSX(file, data)
			}
			if err != nil {
				return err
			}

			a.logger.Info("Export written", "path", output, "expenses", len(list))
			return nil
		},
	}

	now := time.Now().UTC()
	cmd.Flags().StringVar(&email, "email", "", "email of the user to export")
	cmd.Flags().StringVarP(&output, "output", "o", "expenses.xlsx", "destination file (.xlsx or .csv)")
	cmd.Flags().StringVar(&from, "from", fmt.Sprintf("%d-01-01", now.Year()), "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", now.Format("2006-01-02"), "end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
