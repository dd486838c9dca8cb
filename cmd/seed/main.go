package main

import (
	"log"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/MuniTrack/MT-Backend/internal/seeds"
	"github.com/MuniTrack/MT-Backend/internal/tasks"
	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/MuniTrack/MT-Backend/internal/zones"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	workers.Init()
	zones.Init(cfg)
	tasks.Init(cfg, notify.LogNotifier{})

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
