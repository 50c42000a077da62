package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/controlai/controlai/internal/auth"
	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/events"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/router"
	"github.com/controlai/controlai/internal/user"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.storage.ApplyMigrations(ctx, a.logger); err != nil {
		return fmt.Errorf("unable to create schema: %w", err)
	}

	publisher, err := events.NewPublisher(a.conf.AMQP.URL, a.conf.AMQP.Exchange, a.logger)
	if err != nil {
		return fmt.Errorf("unable to connect to the message broker: %w", err)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			a.logger.Error("Error closing publisher", "error", closeErr)
		}
	}()

	users := user.NewService(a.storage, a.logger)
	authService := auth.NewService(a.storage, users, a.conf.Server.SessionTTL, a.logger)

	handler := router.New(router.Services{
		Auth:       authService,
		Users:      users,
		Categories: category.NewService(a.storage, a.logger),
		Expenses:   expense.NewService(a.storage, publisher, a.logger),
	}, a.logger)

	server := &http.Server{
		Addr:              ":" + a.conf.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: a.conf.Server.ReadHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting server", "port", a.conf.Server.Port)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", serveErr)
		}
		return nil
	})

	g.Go(func() error {
		return authService.RunSweeper(gCtx, a.conf.Server.SessionSweep)
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("server shutdown failed: %w", shutdownErr)
		}
		return nil
	})

	return g.Wait()
}
