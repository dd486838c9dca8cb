package tasks

import (
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.SessionFetcher, limiter *middleware.LocationRateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	// Worker routes
	r.Get("/{task_id}", GetTask)
	r.Put("/{task_id}/progress", UpdateProgress)
	r.With(limiter.Middleware).Post("/{task_id}/complete", Complete)

	// Supervisor routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.SupervisorMiddleware(fetcher))

		r.Post("/", CreateTask)
		r.Get("/", ListTasks)
		r.Put("/{task_id}/reset", Reset)
		r.Put("/{task_id}/approve-override", ApproveOverride)
		r.Put("/{task_id}/review", Review)
	})

	return r
}
