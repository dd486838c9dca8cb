package workers

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "fieldops"); err != nil {
		log.Fatal("Failed to ensure schema fieldops: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(&Worker{}); err != nil {
		log.Fatal("Failed to auto-migrate worker tables: ", err)
	}

	log.Println("Workers module initialized")
}
