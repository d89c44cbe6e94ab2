package domain

// Member is a registry entry a transaction can be reconciled to.
// The engine only reads members.
type Member struct {
	MemberID          string `json:"memberID"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	MemberCode        string `json:"memberCode"`
	MemberNumber      string `json:"memberNumber"`
	IsActive          bool   `json:"isActive"`
	HasContactChannel bool   `json:"hasContactChannel"`
	AuditFields
}
