package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusCheckedIn  = "CHECKED_IN"
	StatusCheckedOut = "CHECKED_OUT"
)

// Session is one worker-day attendance record. It is created on a successful
// geofenced check-in, closed on check-out, and never deleted. At most one
// session per worker per day may be CHECKED_IN; a partial unique index
// created in Init enforces this even under concurrent check-ins.
type Session struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"worker_id"`
	ZoneID   *uuid.UUID `gorm:"type:uuid;index" json:"zone_id,omitempty"`
	WorkDate time.Time  `gorm:"type:date;not null;index" json:"work_date"`

	CheckInAt  time.Time `gorm:"not null" json:"check_in_at"`
	CheckInLat float64   `json:"check_in_lat"`
	CheckInLon float64   `json:"check_in_lon"`

	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	CheckOutLat *float64   `json:"check_out_lat,omitempty"`
	CheckOutLon *float64   `json:"check_out_lon,omitempty"`

	Status            string `gorm:"not null;default:'CHECKED_IN'" json:"status"`
	IsValidated       bool   `gorm:"not null;default:false" json:"is_validated"`
	ValidationMessage string `json:"validation_message,omitempty"`
	LateMinutes       int    `gorm:"not null;default:0" json:"late_minutes"`
	DurationMinutes   *int   `json:"duration_minutes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string {
	return "fieldops.attendance_sessions"
}
