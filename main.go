package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/appeals"
	"github.com/MuniTrack/MT-Backend/internal/attendance"
	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/evidence"
	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/MuniTrack/MT-Backend/internal/tasks"
	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/MuniTrack/MT-Backend/internal/zones"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	notifier := notify.LogNotifier{}

	workers.Init()
	zones.Init(cfg)
	attendance.Init()
	tasks.Init(cfg, notifier)
	appeals.Init(notifier)
	evidence.Init(evidence.FromEnv(context.Background()))

	fetcher := middleware.DBSessionFetcher{}
	limiter := middleware.NewLocationRateLimiter(30, 5, 10*time.Minute)
	defer limiter.Close()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/zones", zones.SetupRoutes(fetcher))
	r.Mount("/attendance", attendance.SetupRoutes(fetcher, limiter))
	r.Mount("/tasks", tasks.SetupRoutes(fetcher, limiter))
	r.Mount("/appeals", appeals.SetupRoutes(fetcher))
	r.Mount("/evidence", evidence.SetupRoutes(fetcher))

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
