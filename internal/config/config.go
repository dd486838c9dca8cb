package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	ErrThresholdOrder    = errors.New("HARD_REJECT_DISTANCE_METERS must be greater than WARNING_DISTANCE_METERS")
	ErrNegativeThreshold = errors.New("distance thresholds must not be negative")
	ErrBadServiceArea    = errors.New("service area bounding box is inverted")
)

// BoundingBox is the macro service-area filter applied to every GPS fix
// before any polygon math runs.
type BoundingBox struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

// Contains reports whether the fix falls inside the deployment region.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Config holds the verification engine's tuning surface.
type Config struct {
	// Completion submissions farther than this from the task target are
	// rejected (two-strike policy).
	HardRejectDistanceMeters int `yaml:"hard_reject_distance_meters"`
	// Submissions between this and the hard threshold are accepted but
	// flagged for the supervisor.
	WarningDistanceMeters int `yaml:"warning_distance_meters"`
	// Buffer around zone boundaries, in degrees, tolerating GPS jitter at
	// the edge (0.00027 degrees is roughly 30 m).
	BufferToleranceDegrees float64 `yaml:"buffer_tolerance_degrees"`
	// Fixes reporting a worse accuracy radius than this are refused before
	// any geometry runs.
	MaxAcceptableAccuracyMeters float64 `yaml:"max_acceptable_accuracy_meters"`
	// ServiceArea is the deployment region's macro bounding box.
	ServiceArea BoundingBox `yaml:"service_area"`
	// BypassGeofence skips containment checks and matches the worker's
	// first assigned zone. Exists only for environments without live GPS;
	// must be switched on explicitly via GEOFENCE_BYPASS=true.
	BypassGeofence bool `yaml:"-"`
}

// Default returns the shipping configuration.
func Default() Config {
	return Config{
		HardRejectDistanceMeters:    100,
		WarningDistanceMeters:       50,
		BufferToleranceDegrees:      0.00027,
		MaxAcceptableAccuracyMeters: 50,
		ServiceArea: BoundingBox{
			MinLat: -90, MaxLat: 90,
			MinLon: -180, MaxLon: 180,
		},
	}
}

// LoadFromEnv builds the configuration from defaults, an optional YAML file
// named by GEOFENCE_CONFIG_FILE, then environment variable overrides (env
// wins over file).
//
// Environment variables:
//   - GEOFENCE_CONFIG_FILE: path to a YAML file with the fields above
//   - HARD_REJECT_DISTANCE_METERS, WARNING_DISTANCE_METERS
//   - BUFFER_TOLERANCE_DEGREES, MAX_ACCEPTABLE_ACCURACY_METERS
//   - GEOFENCE_BYPASS: "true" to enable the testing bypass (default off)
func LoadFromEnv() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("GEOFENCE_CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read geofence config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse geofence config %s: %w", path, err)
		}
	}

	if v := os.Getenv("HARD_REJECT_DISTANCE_METERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("HARD_REJECT_DISTANCE_METERS: %w", err)
		}
		cfg.HardRejectDistanceMeters = n
	}
	if v := os.Getenv("WARNING_DISTANCE_METERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("WARNING_DISTANCE_METERS: %w", err)
		}
		cfg.WarningDistanceMeters = n
	}
	if v := os.Getenv("BUFFER_TOLERANCE_DEGREES"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("BUFFER_TOLERANCE_DEGREES: %w", err)
		}
		cfg.BufferToleranceDegrees = f
	}
	if v := os.Getenv("MAX_ACCEPTABLE_ACCURACY_METERS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("MAX_ACCEPTABLE_ACCURACY_METERS: %w", err)
		}
		cfg.MaxAcceptableAccuracyMeters = f
	}

	// Never defaulted on: only the literal string "true" enables it.
	cfg.BypassGeofence = os.Getenv("GEOFENCE_BYPASS") == "true"

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks internal consistency of the thresholds.
func (c Config) Validate() error {
	if c.WarningDistanceMeters < 0 || c.HardRejectDistanceMeters < 0 {
		return ErrNegativeThreshold
	}
	if c.HardRejectDistanceMeters <= c.WarningDistanceMeters {
		return ErrThresholdOrder
	}
	if c.ServiceArea.MinLat > c.ServiceArea.MaxLat || c.ServiceArea.MinLon > c.ServiceArea.MaxLon {
		return ErrBadServiceArea
	}
	return nil
}
