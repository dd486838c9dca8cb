package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. REJECTED tasks can be reset back to IN_PROGRESS by a
// supervisor, or overridden directly to COMPLETED when the rejection was
// automatic.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
)

// Task is a unit of field work assigned to a worker, optionally pinned to a
// target coordinate that completion submissions are verified against.
// SyncVersion is the optimistic-concurrency token: every mutation checks and
// increments it, so a racing writer fails instead of silently overwriting.
type Task struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description,omitempty"`
	AssigneeID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"assignee_id"`
	SupervisorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supervisor_id"`
	ZoneID       *uuid.UUID `gorm:"type:uuid;index" json:"zone_id,omitempty"`

	TargetLat *float64 `json:"target_lat,omitempty"`
	TargetLon *float64 `json:"target_lon,omitempty"`

	Status             string `gorm:"not null;default:'PENDING';index" json:"status"`
	ProgressPercentage int    `gorm:"not null;default:0" json:"progress_percentage"`

	CompletionLat   *float64   `json:"completion_lat,omitempty"`
	CompletionLon   *float64   `json:"completion_lon,omitempty"`
	CompletionNotes string     `json:"completion_notes,omitempty"`
	PhotoRef        string     `json:"photo_ref,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	// Soft signal for supervisors: completion accepted but farther from the
	// target than the warning threshold.
	IsDistanceWarning bool `gorm:"not null;default:false" json:"is_distance_warning"`

	// Two-strike escalation state. The counter only moves through the
	// verification engine; it resets on accepted completion, reset, or
	// override.
	FailedCompletionAttempts int `gorm:"not null;default:0" json:"failed_completion_attempts"`

	// Rejection snapshot, preserved for audit and appeal review.
	AutoRejected      bool       `gorm:"not null;default:false" json:"auto_rejected"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	RejectionDistance *int       `json:"rejection_distance,omitempty"`
	RejectionLat      *float64   `json:"rejection_lat,omitempty"`
	RejectionLon      *float64   `json:"rejection_lon,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`

	SyncVersion int `gorm:"not null;default:1" json:"sync_version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "fieldops.tasks"
}

// HasTarget reports whether the task is pinned to a coordinate.
func (t Task) HasTarget() bool {
	return t.TargetLat != nil && t.TargetLon != nil
}
