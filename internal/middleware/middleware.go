package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/MuniTrack/MT-Backend/internal/workers"
)

type SessionFetcher interface {
	FindSessionByID(id string) (utils.SessionData, error)
}

// Session mirrors the session rows the external auth service maintains.
// This core only ever reads them.
type Session struct {
	SessionID string `gorm:"primaryKey"`
	UserID    string
	ExpiresAt time.Time
}

func (Session) TableName() string { return "app_auth.sessions" }

// DBSessionFetcher resolves session cookies against the auth service's table.
type DBSessionFetcher struct{}

func (DBSessionFetcher) FindSessionByID(id string) (utils.SessionData, error) {
	var s Session
	if err := db.DB.First(&s, "session_id = ?", id).Error; err != nil {
		return utils.SessionData{}, err
	}
	return utils.SessionData{UserID: s.UserID, ExpiresAt: s.ExpiresAt}, nil
}

func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session_id")
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSessionByID(cookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextUserIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func allowedOrigins() map[string]struct{} {
	allowed := map[string]struct{}{
		"http://localhost:5173": {},
		"http://localhost:5174": {},
	}
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return allowed
}

func CORSMiddleware(next http.Handler) http.Handler {
	allowed := allowedOrigins()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it’s on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SupervisorMiddleware allows only users whose worker record carries the
// supervisor role.
func SupervisorMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
				return
			}

			var worker workers.Worker
			if err := db.DB.First(&worker, "id = ?", userID).Error; err != nil {
				http.Error(w, "Unauthorized: worker not found", http.StatusUnauthorized)
				return
			}

			if worker.Role != workers.RoleSupervisor {
				http.Error(w, "Forbidden: supervisor access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
