package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// Version is bumped on every committed write and is used for optimistic checks.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
	Version       int64     `json:"version"`
}

// SystemActor is recorded as the author of writes made by the matching sweep.
const SystemActor = "system"
