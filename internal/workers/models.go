package workers

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleWorker     = "worker"
	RoleSupervisor = "supervisor"
)

// Worker is a field worker (or supervisor) known to the verification engine.
// The disciplinary counter lives on the worker record and is only ever
// mutated through the discipline package.
type Worker struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName       string     `gorm:"not null" json:"full_name"`
	Role           string     `gorm:"not null;default:'worker'" json:"role"`
	MunicipalityID string     `gorm:"index" json:"municipality_id"`
	SupervisorID   *uuid.UUID `gorm:"type:uuid;index" json:"supervisor_id,omitempty"`
	Active         bool       `gorm:"not null;default:true" json:"active"`

	// Shift schedule, minutes after local midnight. Lateness is measured
	// from the end of the grace window.
	ScheduledStartMinutes int `gorm:"not null;default:480" json:"scheduled_start_minutes"`
	GraceMinutes          int `gorm:"not null;default:15" json:"grace_minutes"`

	WarningCount      int        `gorm:"not null;default:0" json:"warning_count"`
	LastWarningAt     *time.Time `json:"last_warning_at,omitempty"`
	LastWarningReason string     `json:"last_warning_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Worker) TableName() string {
	return "fieldops.workers"
}
