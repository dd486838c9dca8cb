package zones

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	locator  *Locator
)

func Init(cfg config.Config) {
	if err := db.EnsureSchema(db.DB, "fieldops"); err != nil {
		log.Fatal("Failed to ensure schema fieldops: ", err)
	}

	if err := db.DB.AutoMigrate(&Zone{}, &WorkerZoneAssignment{}); err != nil {
		log.Fatal("Failed to auto-migrate zone tables: ", err)
	}

	locator = NewLocator(cfg, DBAssignmentSource{})

	if cfg.BypassGeofence {
		log.Println("WARNING: geofence bypass is enabled; containment checks are skipped")
	}
	log.Println("Zones module initialized")
}

// DefaultLocator exposes the configured locator to the attendance and task
// packages.
func DefaultLocator() *Locator {
	return locator
}
