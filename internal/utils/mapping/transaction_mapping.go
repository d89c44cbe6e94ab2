package mapping

import (
	"fmt"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
// The assignment variant is flattened into status, member_id and draft_candidates.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:   d.TransactionID,
		StatementRef:    d.StatementRef,
		TransactionDate: d.TransactionDate,
		ValueDate:       d.ValueDate,
		Particulars:     d.Particulars,
		TransactionCode: d.TransactionCode,
		Credit:          d.Credit,
		Debit:           d.Debit,
		Status:          string(d.Status()),
		DraftCandidates: []models.DraftCandidate{},
		MatchConfidence: d.MatchConfidence,
		IsSplit:         d.IsSplit,
		IsArchived:      d.IsArchived,
		ArchiveReason:   d.ArchiveReason,
		ArchivedAt:      d.ArchivedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if memberID, ok := d.MemberID(); ok {
		m.MemberID = &memberID
	}
	for _, c := range d.Assignment.Candidates() {
		m.DraftCandidates = append(m.DraftCandidates, models.DraftCandidate(c))
	}
	return m
}

// ToDomainTransaction converts a model Transaction to a domain Transaction.
// It fails when the stored row violates the assignment invariants.
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	candidates := make([]domain.MatchCandidate, 0, len(m.DraftCandidates))
	for _, c := range m.DraftCandidates {
		candidates = append(candidates, domain.MatchCandidate(c))
	}
	assignment, err := domain.RestoreAssignment(domain.AssignmentStatus(m.Status), m.MemberID, candidates)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		StatementRef:    m.StatementRef,
		TransactionDate: m.TransactionDate,
		ValueDate:       m.ValueDate,
		Particulars:     m.Particulars,
		TransactionCode: m.TransactionCode,
		Credit:          m.Credit,
		Debit:           m.Debit,
		Assignment:      assignment,
		MatchConfidence: m.MatchConfidence,
		IsSplit:         m.IsSplit,
		IsArchived:      m.IsArchived,
		ArchiveReason:   m.ArchiveReason,
		ArchivedAt:      m.ArchivedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) ([]domain.Transaction, error) {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		d, err := ToDomainTransaction(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}
