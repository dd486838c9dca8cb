package zones

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/geomath"
	"github.com/google/uuid"
)

var (
	ErrInvalidCoordinates = errors.New("invalid GPS coordinates")
	ErrLowGPSAccuracy     = errors.New("GPS accuracy too low to trust")
	ErrNoAssignedZone     = errors.New("worker has no assigned zone")
	ErrOutsideServiceArea = errors.New("location is outside the service area")
)

// Fix is a single GPS reading. Accuracy is the reported accuracy radius in
// meters; nil means the client did not report one.
type Fix struct {
	Lat      float64
	Lon      float64
	Accuracy *float64
}

// Point returns the fix as a geomath point.
func (f Fix) Point() geomath.Point {
	return geomath.Point{Lat: f.Lat, Lon: f.Lon}
}

// AssignmentSource looks up a worker's active zone assignments, oldest
// assignment first. The production implementation reads the assignment
// table; tests substitute in-memory sets.
type AssignmentSource interface {
	ActiveZones(ctx context.Context, workerID uuid.UUID) ([]Zone, error)
}

// DBAssignmentSource reads active assignments joined to active zones.
type DBAssignmentSource struct{}

func (DBAssignmentSource) ActiveZones(ctx context.Context, workerID uuid.UUID) ([]Zone, error) {
	var assignments []WorkerZoneAssignment
	err := db.DB.WithContext(ctx).
		Preload("Zone").
		Where("worker_id = ? AND active = true", workerID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("load zone assignments: %w", err)
	}

	out := make([]Zone, 0, len(assignments))
	for _, a := range assignments {
		if a.Zone.Active {
			out = append(out, a.Zone)
		}
	}
	return out, nil
}

// Locator decides which (if any) of a worker's zones a GPS fix belongs to.
type Locator struct {
	Cfg    config.Config
	Source AssignmentSource
}

func NewLocator(cfg config.Config, source AssignmentSource) *Locator {
	return &Locator{Cfg: cfg, Source: source}
}

// CheckFix runs the cheap guards that apply to every location-bearing
// request: the (0,0) null-island reading, malformed coordinates, fixes less
// precise than the configured accuracy ceiling, and fixes outside the
// deployment region's bounding box.
func (l *Locator) CheckFix(fix Fix) error {
	if fix.Lat == 0 && fix.Lon == 0 {
		return ErrInvalidCoordinates
	}
	if fix.Lat < -90 || fix.Lat > 90 || fix.Lon < -180 || fix.Lon > 180 {
		return ErrInvalidCoordinates
	}
	if fix.Accuracy != nil && *fix.Accuracy > l.Cfg.MaxAcceptableAccuracyMeters {
		return ErrLowGPSAccuracy
	}
	if !l.Cfg.ServiceArea.Contains(fix.Lat, fix.Lon) {
		return ErrOutsideServiceArea
	}
	return nil
}

// Locate returns the first assigned zone containing the fix (within the
// tolerance buffer), in assignment order.
//
// With the geofence bypass enabled the worker's first assigned zone is
// returned without any containment check. The bypass exists to unblock
// environments without live GPS and is never defaulted on.
func (l *Locator) Locate(ctx context.Context, workerID uuid.UUID, fix Fix) (*Zone, error) {
	if err := l.CheckFix(fix); err != nil {
		return nil, err
	}

	assigned, err := l.Source.ActiveZones(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if len(assigned) == 0 {
		return nil, ErrNoAssignedZone
	}

	if l.Cfg.BypassGeofence {
		z := assigned[0]
		return &z, nil
	}

	pt := fix.Point()
	for i := range assigned {
		if geomath.ContainsWithTolerance(assigned[i].Ring(), pt, l.Cfg.BufferToleranceDegrees) {
			z := assigned[i]
			return &z, nil
		}
	}
	return nil, ErrOutsideServiceArea
}
