package appeals

import (
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Post("/", Submit)
	r.Get("/{appeal_id}", GetAppeal)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SupervisorMiddleware(fetcher))

		r.Get("/", ListAppeals)
		r.Post("/{appeal_id}/review", Review)
	})

	return r
}
