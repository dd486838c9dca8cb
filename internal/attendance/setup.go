package attendance

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func Init() {
	if err := db.EnsureSchema(db.DB, "fieldops"); err != nil {
		log.Fatal("Failed to ensure schema fieldops: ", err)
	}

	if err := db.DB.AutoMigrate(&Session{}); err != nil {
		log.Fatal("Failed to auto-migrate attendance tables: ", err)
	}

	// One open session per worker per day, even if two check-ins race past
	// the transactional existence check.
	if err := db.DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session
		ON fieldops.attendance_sessions (worker_id, work_date)
		WHERE status = 'CHECKED_IN';
	`).Error; err != nil {
		log.Fatal("Failed to create idx_one_open_session: ", err)
	}

	log.Println("Attendance module initialized")
}
