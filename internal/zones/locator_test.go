package zones

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// stubSource serves a fixed zone list without a database.
type stubSource struct {
	zones []Zone
	err   error
}

func (s stubSource) ActiveZones(ctx context.Context, workerID uuid.UUID) ([]Zone, error) {
	return s.zones, s.err
}

// testZone is a ~1.1km square around (31.9, 35.2).
func testZone(name string) Zone {
	return Zone{
		ID:   uuid.New(),
		Name: name,
		Boundary: pq.Float64Array{
			31.895, 35.195,
			31.895, 35.205,
			31.905, 35.205,
			31.905, 35.195,
		},
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ServiceArea = config.BoundingBox{MinLat: 29, MaxLat: 34, MinLon: 33, MaxLon: 37}
	return cfg
}

func TestLocate_InsideZone(t *testing.T) {
	zone := testZone("District 4 North")
	loc := NewLocator(testConfig(), stubSource{zones: []Zone{zone}})

	got, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 31.9, Lon: 35.2})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got.ID != zone.ID {
		t.Errorf("expected zone %s, got %s", zone.ID, got.ID)
	}
}

func TestLocate_OutsideAllZones(t *testing.T) {
	loc := NewLocator(testConfig(), stubSource{zones: []Zone{testZone("District 4 North")}})

	_, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 31.5, Lon: 35.2})
	if !errors.Is(err, ErrOutsideServiceArea) {
		t.Errorf("expected ErrOutsideServiceArea, got %v", err)
	}
}

func TestLocate_NoAssignedZones(t *testing.T) {
	loc := NewLocator(testConfig(), stubSource{})

	_, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 31.9, Lon: 35.2})
	if !errors.Is(err, ErrNoAssignedZone) {
		t.Errorf("expected ErrNoAssignedZone, got %v", err)
	}
}

func TestLocate_AssignmentOrderWins(t *testing.T) {
	first := testZone("First Assigned")
	second := testZone("Second Assigned")
	loc := NewLocator(testConfig(), stubSource{zones: []Zone{first, second}})

	got, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 31.9, Lon: 35.2})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected the first assigned zone to match, got %q", got.Name)
	}
}

func TestCheckFix_Guards(t *testing.T) {
	loc := NewLocator(testConfig(), stubSource{zones: []Zone{testZone("z")}})

	if err := loc.CheckFix(Fix{Lat: 0, Lon: 0}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("null island: expected ErrInvalidCoordinates, got %v", err)
	}
	if err := loc.CheckFix(Fix{Lat: 123.4, Lon: 35.2}); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("out-of-range lat: expected ErrInvalidCoordinates, got %v", err)
	}

	bad := 250.0
	if err := loc.CheckFix(Fix{Lat: 31.9, Lon: 35.2, Accuracy: &bad}); !errors.Is(err, ErrLowGPSAccuracy) {
		t.Errorf("low accuracy: expected ErrLowGPSAccuracy, got %v", err)
	}

	good := 12.0
	if err := loc.CheckFix(Fix{Lat: 31.9, Lon: 35.2, Accuracy: &good}); err != nil {
		t.Errorf("good fix: expected nil, got %v", err)
	}

	// Broad-phase bounding box fires before any polygon math.
	if err := loc.CheckFix(Fix{Lat: 52.5, Lon: 13.4}); !errors.Is(err, ErrOutsideServiceArea) {
		t.Errorf("out-of-region: expected ErrOutsideServiceArea, got %v", err)
	}
}

func TestLocate_BypassReturnsFirstAssignment(t *testing.T) {
	zone := testZone("Depot")
	cfg := testConfig()
	cfg.BypassGeofence = true
	loc := NewLocator(cfg, stubSource{zones: []Zone{zone}})

	// A fix nowhere near the zone (but inside the service area) still matches.
	got, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 30.1, Lon: 34.1})
	if err != nil {
		t.Fatalf("Locate with bypass: %v", err)
	}
	if got.ID != zone.ID {
		t.Errorf("bypass should return the first assignment, got %q", got.Name)
	}
}

func TestLocate_BypassStillRequiresAssignment(t *testing.T) {
	cfg := testConfig()
	cfg.BypassGeofence = true
	loc := NewLocator(cfg, stubSource{})

	_, err := loc.Locate(context.Background(), uuid.New(), Fix{Lat: 31.9, Lon: 35.2})
	if !errors.Is(err, ErrNoAssignedZone) {
		t.Errorf("expected ErrNoAssignedZone even with bypass, got %v", err)
	}
}

func TestZoneRing_Degenerate(t *testing.T) {
	z := Zone{Boundary: pq.Float64Array{31.9, 35.2, 31.91}}
	if z.Ring() != nil {
		t.Error("odd-length boundary must decode to nil ring")
	}
	z = Zone{}
	if z.Ring() != nil {
		t.Error("zone without boundary must decode to nil ring")
	}
}
