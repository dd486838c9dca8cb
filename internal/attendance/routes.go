package attendance

import (
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.SessionFetcher, limiter *middleware.LocationRateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))
	r.Use(limiter.Middleware)

	r.Post("/check-in", CheckIn)
	r.Post("/check-out", CheckOut)
	r.Get("/sessions", ListMine)

	return r
}
