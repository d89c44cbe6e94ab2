package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveAndRestoreRoundTrip(t *testing.T) {
	store := newSeededStore(t, creditLine("tx-1", "DEPOSIT", "1500"))
	assignments := services.NewAssignmentService(store, store)
	archives := services.NewArchiveService(store)
	ctx := context.Background()

	_, err := assignments.AssignTransaction(ctx, "tx-1", "m-3", operatorID)
	require.NoError(t, err)

	reason := "bank reversal"
	archived, err := archives.ArchiveTransaction(ctx, "tx-1", &reason, operatorID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, domain.StatusManualAssigned, archived.Status(), "archive keeps the assignment")

	_, err = archives.ArchiveTransaction(ctx, "tx-1", nil, operatorID)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyArchived))

	restored, err := archives.RestoreTransaction(ctx, "tx-1", operatorID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Nil(t, restored.ArchiveReason)
	assert.Nil(t, restored.ArchivedAt)
	memberID, ok := restored.MemberID()
	assert.True(t, ok)
	assert.Equal(t, "m-3", memberID)

	_, err = archives.RestoreTransaction(ctx, "tx-1", operatorID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestArchive_RejectsDuplicate(t *testing.T) {
	store := newSeededStore(t, creditLine("tx-1", "DEPOSIT", "1500"))
	mutate(t, store, "tx-1", func(tx *domain.Transaction) { tx.Assignment = domain.Duplicate() })

	_, err := services.NewArchiveService(store).ArchiveTransaction(context.Background(), "tx-1", nil, operatorID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	tx, err := store.FindTransactionByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.False(t, tx.IsArchived)
	assert.Equal(t, domain.StatusDuplicate, tx.Status())
}

func TestArchive_NotFound(t *testing.T) {
	store := newSeededStore(t)
	_, err := services.NewArchiveService(store).ArchiveTransaction(context.Background(), "tx-404", nil, operatorID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
