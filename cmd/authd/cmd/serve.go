package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-authd"
	"github.com/goliatone/go-authd/persistence"
	"github.com/goliatone/go-authd/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP server with the auth and protected routes. Run "authd db migrate" first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startedAt := time.Now()

		db, err := persistence.NewDB(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer persistence.Close(db)

		logger.Info("connected to database", "type", string(persistence.DetectDatabaseType(cfg.Database.DSN)))

		app := server.New(server.Options{
			Config:     cfg,
			Directory:  auth.NewUserDirectory(db),
			Logger:     logger,
			RequestLog: logger.With("component", "http").Writer(),
			StartedAt:  startedAt,
		})

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", cfg.Server.Addr, "environment", cfg.Environment)
			serverErrors <- app.Listen(cfg.Server.Addr)
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info("shutting down gracefully", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(ctx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
		}

		return nil
	},
}
