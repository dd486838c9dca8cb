package tasks

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/geomath"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	cfg      config.Config
	notifier notify.Notifier
)

func Init(c config.Config, n notify.Notifier) {
	cfg = c
	notifier = n

	if err := db.EnsureSchema(db.DB, "fieldops"); err != nil {
		log.Fatal("Failed to ensure schema fieldops: ", err)
	}

	if err := db.DB.AutoMigrate(&Task{}); err != nil {
		log.Fatal("Failed to auto-migrate task tables: ", err)
	}

	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_assignee_status
		ON fieldops.tasks (assignee_id, status);
	`).Error; err != nil {
		log.Fatal("Failed to create idx_tasks_assignee_status: ", err)
	}

	log.Println("Tasks module initialized")
}

func fixPoint(lat, lon float64) geomath.Point {
	return geomath.Point{Lat: lat, Lon: lon}
}
