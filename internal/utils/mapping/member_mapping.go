package mapping

import (
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:          d.MemberID,
		Name:              d.Name,
		Phone:             d.Phone,
		MemberCode:        d.MemberCode,
		MemberNumber:      d.MemberNumber,
		IsActive:          d.IsActive,
		HasContactChannel: d.HasContactChannel,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:          m.MemberID,
		Name:              m.Name,
		Phone:             m.Phone,
		MemberCode:        m.MemberCode,
		MemberNumber:      m.MemberNumber,
		IsActive:          m.IsActive,
		HasContactChannel: m.HasContactChannel,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
