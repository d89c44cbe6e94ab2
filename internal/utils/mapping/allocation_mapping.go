package mapping

import (
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/models"
)

func ToModelSplitAllocation(d domain.SplitAllocation) models.SplitAllocation {
	return models.SplitAllocation(d)
}

func ToDomainSplitAllocation(m models.SplitAllocation) domain.SplitAllocation {
	return domain.SplitAllocation(m)
}

// ToModelTransferRecord converts a domain TransferRecord to a model TransferRecord
func ToModelTransferRecord(d domain.TransferRecord) models.TransferRecord {
	return models.TransferRecord{
		TransferID:     d.TransferID,
		TransactionID:  d.TransactionID,
		FromMemberID:   d.FromMemberID,
		Mode:           string(d.Mode),
		TotalAmount:    d.TotalAmount,
		Notes:          d.Notes,
		PreviousStatus: string(d.PreviousStatus),
		InitiatedBy:    d.InitiatedBy,
		CreatedAt:      d.CreatedAt,
	}
}

// ToModelMatchLog converts a domain MatchLog to a model MatchLog
func ToModelMatchLog(d domain.MatchLog) models.MatchLog {
	return models.MatchLog{
		MatchLogID:    d.MatchLogID,
		TransactionID: d.TransactionID,
		MemberID:      d.MemberID,
		Confidence:    d.Confidence,
		Reason:        d.Reason,
		Source:        string(d.Source),
		OperatorID:    d.OperatorID,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainMatchLog converts a model MatchLog to a domain MatchLog
func ToDomainMatchLog(m models.MatchLog) domain.MatchLog {
	return domain.MatchLog{
		MatchLogID:    m.MatchLogID,
		TransactionID: m.TransactionID,
		MemberID:      m.MemberID,
		Confidence:    m.Confidence,
		Reason:        m.Reason,
		Source:        domain.MatchSource(m.Source),
		OperatorID:    m.OperatorID,
		CreatedAt:     m.CreatedAt,
	}
}
