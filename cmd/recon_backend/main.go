package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// @title Reconciliation Engine API
// @version 1.0
// @description Assigns bank statement transactions to members and keeps the audit trail.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "recon_backend",
		Short: "Transaction assignment and reconciliation engine",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	serve := newServeCommand(logger)
	rootCmd.AddCommand(serve, newMatchCommand(logger), newMigrateCommand(logger), newSeedCommand(logger))
	// Running without a subcommand starts the server.
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
