package evidence

import (
	"encoding/json"
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

var store Store

// Init wires the selected store into the upload handler.
func Init(s Store) {
	store = s
}

// Upload accepts a multipart file and returns the stored reference the
// client then attaches to a completion submission or appeal.
func Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10 MiB

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ref, err := store.Save(r.Context(), header.Filename, file)
	if err != nil {
		http.Error(w, "Failed to store evidence: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"evidence_ref": ref})
}

func SetupRoutes(fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Post("/", Upload)

	return r
}
