package attendance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/MuniTrack/MT-Backend/internal/zones"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAlreadyCheckedIn = errors.New("worker already has an open session today")
	ErrNoActiveSession  = errors.New("worker has no open session today")
)

type checkInRequest struct {
	Lat      float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64  `json:"lon" validate:"gte=-180,lte=180"`
	Accuracy *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

type checkOutRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// CheckIn opens today's attendance session for the calling worker, gated on
// the geofence. An already-open session is answered before the zone lookup,
// so a checked-in worker gets the duplicate response regardless of where
// they are standing. The existence check is then repeated with the insert in
// one transaction so two concurrent check-ins cannot both succeed; the
// partial unique index on (worker_id, work_date) backstops the transaction.
func CheckIn(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerFromRequest(w, r)
	if !ok {
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var worker workers.Worker
	if err := db.DB.First(&worker, "id = ?", workerID).Error; err != nil {
		http.Error(w, "Worker not found", http.StatusNotFound)
		return
	}

	now := time.Now()

	var open int64
	err := db.DB.Model(&Session{}).
		Where("worker_id = ? AND work_date = ? AND status = ?", workerID, workDate(now), StatusCheckedIn).
		Count(&open).Error
	if err != nil {
		http.Error(w, "Failed to check in: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if open > 0 {
		http.Error(w, "You are already checked in for today.", http.StatusConflict)
		return
	}

	fix := zones.Fix{Lat: req.Lat, Lon: req.Lon, Accuracy: req.Accuracy}
	zone, err := zones.DefaultLocator().Locate(r.Context(), workerID, fix)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, zones.ErrInvalidCoordinates) || errors.Is(err, zones.ErrLowGPSAccuracy) {
			status = http.StatusBadRequest
		}
		http.Error(w, zones.WorkerMessage(err), status)
		return
	}

	session := Session{
		WorkerID:          workerID,
		ZoneID:            &zone.ID,
		WorkDate:          workDate(now),
		CheckInAt:         now,
		CheckInLat:        req.Lat,
		CheckInLon:        req.Lon,
		Status:            StatusCheckedIn,
		IsValidated:       true,
		ValidationMessage: fmt.Sprintf("Checked in inside zone %s", zone.Name),
		LateMinutes:       LateMinutes(now, worker.ScheduledStartMinutes, worker.GraceMinutes),
	}

	err = db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Session{}).
			Where("worker_id = ? AND work_date = ? AND status = ?", workerID, session.WorkDate, StatusCheckedIn).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyCheckedIn
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) || isUniqueViolation(err) {
			http.Error(w, "You are already checked in for today.", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to check in: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

// CheckOut closes the caller's open session and records the derived work
// duration.
func CheckOut(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerFromRequest(w, r)
	if !ok {
		return
	}

	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := zones.DefaultLocator().CheckFix(zones.Fix{Lat: req.Lat, Lon: req.Lon}); err != nil {
		http.Error(w, zones.WorkerMessage(err), http.StatusBadRequest)
		return
	}

	now := time.Now()
	var session Session

	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("worker_id = ? AND work_date = ? AND status = ?", workerID, workDate(now), StatusCheckedIn).
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveSession
		}
		if err != nil {
			return err
		}

		duration := int(now.Sub(session.CheckInAt).Minutes())
		session.CheckOutAt = &now
		session.CheckOutLat = &req.Lat
		session.CheckOutLon = &req.Lon
		session.DurationMinutes = &duration
		session.Status = StatusCheckedOut
		return tx.Save(&session).Error
	})
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			http.Error(w, "You have no open session to check out of.", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to check out: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// ListMine returns the caller's sessions, newest first.
func ListMine(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerFromRequest(w, r)
	if !ok {
		return
	}

	var sessions []Session
	if err := db.DB.Where("worker_id = ?", workerID).
		Order("check_in_at DESC").
		Limit(60).
		Find(&sessions).Error; err != nil {
		http.Error(w, "Failed to fetch sessions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func workerFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	workerID, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "Invalid worker ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return workerID, true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
