package appeals

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	notifier notify.Notifier
)

func Init(n notify.Notifier) {
	notifier = n

	if err := db.EnsureSchema(db.DB, "fieldops"); err != nil {
		log.Fatal("Failed to ensure schema fieldops: ", err)
	}

	if err := db.DB.AutoMigrate(&Appeal{}); err != nil {
		log.Fatal("Failed to auto-migrate appeal tables: ", err)
	}

	log.Println("Appeals module initialized")
}
