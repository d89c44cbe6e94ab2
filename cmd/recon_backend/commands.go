package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/core/services"
	"github.com/SscSPs/reconciliation_engine/internal/handlers"
	"github.com/SscSPs/reconciliation_engine/internal/middleware"
	"github.com/SscSPs/reconciliation_engine/internal/platform/config"
	"github.com/SscSPs/reconciliation_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(logger *slog.Logger) *cobra.Command {
	var seedFile string
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repos, cleanup, err := openRepositories(ctx, cfg, logger, !skipMigrations)
			if err != nil {
				return err
			}
			defer cleanup()

			if seedFile != "" {
				if err := seedFrom(ctx, seedFile, repos, logger); err != nil {
					return err
				}
			}

			rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
			if err != nil {
				return err
			}
			analytics := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
			defer analytics.Close()

			if cfg.IsProduction {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			// Global middleware (logging, recovery)
			r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
			if err := r.SetTrustedProxies(nil); err != nil {
				return err
			}

			serviceContainer := services.NewServiceContainer(cfg, repos)
			handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter, analytics)

			srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixture of members and transactions to load at startup")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations before serving")
	return cmd
}

func newMatchCommand(logger *slog.Logger) *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run one matching sweep and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			repos, cleanup, err := openRepositories(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if seedFile != "" {
				if err := seedFrom(ctx, seedFile, repos, logger); err != nil {
					return err
				}
			}

			summary, err := services.NewServiceContainer(cfg, repos).Matching.MatchUnassigned(ctx)
			if err != nil {
				return err
			}
			logger.Info("Matching sweep completed",
				slog.Int("auto_assigned", summary.AutoAssigned),
				slog.Int("draft_assigned", summary.DraftAssigned),
				slog.Int("unassigned", summary.Unassigned),
				slog.Int("duplicates", summary.Duplicates),
				slog.Int("skipped", summary.Skipped),
				slog.Int("total_processed", summary.TotalProcessed),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixture to load before the sweep")
	return cmd
}

func newMigrateCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.StorageDriverMemory {
				logger.Info("Memory storage has no schema; nothing to migrate")
				return nil
			}
			return runMigrations(cfg, logger)
		},
	}
}

func newSeedCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load members and statement lines from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.StorageDriverMemory {
				logger.Warn("Seeding memory storage only lasts for this process")
			}
			repos, cleanup, err := openRepositories(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			defer cleanup()
			return seedFrom(cmd.Context(), args[0], repos, logger)
		},
	}
}
