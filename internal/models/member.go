package models

// Member mirrors a row of the members table.
type Member struct {
	MemberID          string `db:"member_id"`
	Name              string `db:"name"`
	Phone             string `db:"phone"`
	MemberCode        string `db:"member_code"`
	MemberNumber      string `db:"member_number"`
	IsActive          bool   `db:"is_active"`
	HasContactChannel bool   `db:"has_contact_channel"`
	AuditFields
}
