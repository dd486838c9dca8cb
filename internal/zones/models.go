package zones

import (
	"time"

	"github.com/MuniTrack/MT-Backend/internal/geomath"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Zone is a municipally defined work area. The boundary is stored as a
// flattened [lat0, lon0, lat1, lon1, ...] ring; zones are imported by
// external tooling and are read-only to this service.
type Zone struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	MunicipalityID string          `gorm:"index" json:"municipality_id"`
	Boundary       pq.Float64Array `gorm:"type:float8[]" json:"boundary"`
	Active         bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Zone) TableName() string {
	return "fieldops.zones"
}

// Ring decodes the flattened boundary column. An odd-length or empty array
// yields a ring that contains nothing.
func (z Zone) Ring() geomath.Ring {
	if len(z.Boundary) < 6 || len(z.Boundary)%2 != 0 {
		return nil
	}
	ring := make(geomath.Ring, 0, len(z.Boundary)/2)
	for i := 0; i+1 < len(z.Boundary); i += 2 {
		ring = append(ring, geomath.Point{Lat: z.Boundary[i], Lon: z.Boundary[i+1]})
	}
	return ring
}

// WorkerZoneAssignment links a worker to a zone they are authorized to work
// in. Assignment order (assigned_at) decides which zone matches first.
type WorkerZoneAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WorkerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_worker_zone,unique" json:"worker_id"`
	ZoneID     uuid.UUID `gorm:"type:uuid;not null;index:idx_worker_zone,unique" json:"zone_id"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`

	Zone Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

func (WorkerZoneAssignment) TableName() string {
	return "fieldops.worker_zone_assignments"
}
