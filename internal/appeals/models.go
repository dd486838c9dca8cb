package appeals

import (
	"time"

	"github.com/google/uuid"
)

// EntityType is a closed set of disputable entity kinds. Attendance
// disputes would add a constant and a switch arm in Submit, not a new
// free-form string.
type EntityType string

const (
	EntityTask EntityType = "TASK"
)

// Valid reports whether t names a known disputable kind.
func (t EntityType) Valid() bool {
	return t == EntityTask
}

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Appeal is a worker's dispute of an automatic rejection. The original
// rejection context is snapshotted onto the appeal at submission time so the
// review decision never depends on the disputed entity's mutable state.
// At most one appeal may exist per disputed entity, and an appeal is
// immutable once resolved.
type Appeal struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EntityType EntityType `gorm:"not null;index:idx_appeal_entity,unique" json:"entity_type"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_appeal_entity,unique" json:"entity_id"`
	WorkerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"worker_id"`

	Explanation string `gorm:"not null" json:"explanation"`
	EvidenceRef string `json:"evidence_ref,omitempty"`

	// Rejection snapshot, copied from the disputed entity at submission.
	ExpectedLat    *float64 `json:"expected_lat,omitempty"`
	ExpectedLon    *float64 `json:"expected_lon,omitempty"`
	ActualLat      *float64 `json:"actual_lat,omitempty"`
	ActualLon      *float64 `json:"actual_lon,omitempty"`
	DistanceMeters *int     `json:"distance_meters,omitempty"`
	Reason         string   `json:"reason,omitempty"`

	Status      string     `gorm:"not null;default:'PENDING';index" json:"status"`
	ReviewerID  *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Appeal) TableName() string {
	return "fieldops.appeals"
}
