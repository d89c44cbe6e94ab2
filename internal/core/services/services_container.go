package services

import (
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Assignment = NewAssignmentService(repos.TransactionRepo, repos.MemberRepo)
	container.Archive = NewArchiveService(repos.TransactionRepo)

	// Bulk operations reuse the single-item services so both paths share one set of rules
	container.Bulk = NewBulkService(
		container.Assignment,
		container.Archive,
		repos.MemberRepo,
		WithBulkWorkers(cfg.BulkWorkers),
	)

	container.Matching = NewMatchingService(
		repos.TransactionRepo,
		repos.MemberRepo,
		WithMatchingPolicy(cfg.MatchingPolicy),
		WithMatchWorkers(cfg.MatchWorkers),
	)

	container.Transactions = NewTransactionQueryService(repos.TransactionRepo, repos.MemberRepo)

	return container
}
