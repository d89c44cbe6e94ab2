package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	"github.com/SscSPs/reconciliation_engine/internal/platform/config"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/memory"
	"github.com/SscSPs/reconciliation_engine/internal/seed"
	"github.com/SscSPs/reconciliation_engine/pkg/database"
)

// openRepositories builds the repository provider for the configured storage driver.
// The returned cleanup releases the connection pool, if any.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage; data is lost on exit")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	if migrate {
		if err := runMigrations(cfg, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
	applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		return err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}
	return nil
}

func seedFrom(ctx context.Context, path string, repos portsrepo.RepositoryProvider, logger *slog.Logger) error {
	data, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, data, repos.MemberRepo, repos.TransactionRepo); err != nil {
		return err
	}
	logger.Info("Seed data loaded",
		slog.String("file", path),
		slog.Int("members", len(data.Members)),
		slog.Int("transactions", len(data.Transactions)),
	)
	return nil
}
