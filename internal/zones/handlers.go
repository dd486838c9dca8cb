package zones

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/google/uuid"
)

type validateRequest struct {
	Lat      float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64  `json:"lon" validate:"gte=-180,lte=180"`
	Accuracy *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

type validateResponse struct {
	Zone    *Zone  `json:"zone"`
	Message string `json:"message,omitempty"`
}

// ValidateLocation checks the caller's GPS fix against their assigned zones
// and returns the matching zone, or null with a worker-facing explanation.
func ValidateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}
	workerID, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "Invalid worker ID", http.StatusBadRequest)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	zone, err := locator.Locate(r.Context(), workerID, Fix{Lat: req.Lat, Lon: req.Lon, Accuracy: req.Accuracy})

	w.Header().Set("Content-Type", "application/json")
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(validateResponse{Zone: zone})
	case errors.Is(err, ErrInvalidCoordinates), errors.Is(err, ErrLowGPSAccuracy):
		http.Error(w, WorkerMessage(err), http.StatusBadRequest)
	case errors.Is(err, ErrNoAssignedZone), errors.Is(err, ErrOutsideServiceArea):
		json.NewEncoder(w).Encode(validateResponse{Zone: nil, Message: WorkerMessage(err)})
	default:
		http.Error(w, "Failed to validate location: "+err.Error(), http.StatusInternalServerError)
	}
}

// ListAssigned returns the caller's active zone assignments.
func ListAssigned(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return
	}
	workerID, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "Invalid worker ID", http.StatusBadRequest)
		return
	}

	assigned, err := locator.Source.ActiveZones(r.Context(), workerID)
	if err != nil {
		http.Error(w, "Failed to fetch zones: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assigned)
}

// WorkerMessage translates locator errors into the messages workers see.
// "No zones assigned" and "outside your zones" are deliberately distinct:
// the first is an administrative problem, the second a location problem.
func WorkerMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		return "Your device reported invalid GPS coordinates. Please re-enable location services and try again."
	case errors.Is(err, ErrLowGPSAccuracy):
		return "Your GPS signal is too imprecise right now. Move to open sky and try again."
	case errors.Is(err, ErrNoAssignedZone):
		return "You have no work zones assigned. Please contact your supervisor."
	case errors.Is(err, ErrOutsideServiceArea):
		return "Your current location is outside all of your assigned work zones."
	default:
		return "Location check failed."
	}
}
