package zones

import (
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Post("/validate", ValidateLocation)
	r.Get("/assigned", ListAssigned)

	return r
}
