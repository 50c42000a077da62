package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/events"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/importer"
)

func importCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import expenses from a CSV or JSON statement",
		Long: `Import expenses from a CSV or JSON statement. The file needs the columns
date, description, amount and category. Unknown categories are created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := a.userByEmail(ctx, email)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %s: %w", args[0], err)
			}
			defer file.Close()

			data, err := importer.ParseFile(filepath.Base(args[0]), file)
			if err != nil {
				return err
			}

			mapping, err := importer.DefaultMapping(data)
			if err != nil {
				return err
			}

			publisher, err := events.NewPublisher(a.conf.AMQP.URL, a.conf.AMQP.Exchange, a.logger)
			if err != nil {
				return fmt.Errorf("unable to connect to the message broker: %w", err)
			}
			defer publisher.Close()

			imp := importer.New(
				expense.NewService(a.storage, publisher, a.logger),
				category.NewService(a.storage, a.logger),
				a.logger,
			)

			result, err := imp.Import(ctx, owner.ID(), data, mapping)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d expenses, created %d categories\n", result.Imported, result.CategoriesCreated)
			for _, rowErr := range result.Errors {
				fmt.Fprintln(out, rowErr.Error())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user owning the expenses")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
