package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/discipline"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/MuniTrack/MT-Backend/internal/zones"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	AssigneeID  uuid.UUID  `json:"assignee_id" validate:"required"`
	ZoneID      *uuid.UUID `json:"zone_id,omitempty"`
	TargetLat   *float64   `json:"target_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	TargetLon   *float64   `json:"target_lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type completeRequest struct {
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Accuracy    *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Notes       string   `json:"notes"`
	EvidenceRef string   `json:"evidence_ref"`
}

type progressRequest struct {
	ProgressPercentage int `json:"progress_percentage" validate:"gte=0,lte=100"`
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// CreateTask lets a supervisor assign a new task, optionally pinned to a
// target coordinate.
func CreateTask(w http.ResponseWriter, r *http.Request) {
	supervisorID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if (req.TargetLat == nil) != (req.TargetLon == nil) {
		http.Error(w, "Target coordinates must be given as a lat/lon pair", http.StatusBadRequest)
		return
	}

	task := Task{
		Title:        req.Title,
		Description:  req.Description,
		AssigneeID:   req.AssigneeID,
		SupervisorID: supervisorID,
		ZoneID:       req.ZoneID,
		TargetLat:    req.TargetLat,
		TargetLon:    req.TargetLon,
		Status:       StatusPending,
	}
	if err := db.DB.Create(&task).Error; err != nil {
		http.Error(w, "Failed to create task: "+err.Error(), http.StatusInternalServerError)
		return
	}

	notify.Send(r.Context(), notifier, []string{task.AssigneeID.String()},
		"New task assigned", fmt.Sprintf("Task %q has been assigned to you.", task.Title))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

// GetTask returns a single task.
func GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	var task Task
	if err := db.DB.First(&task, "id = ?", taskID).Error; err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// ListTasks returns tasks with optional assignee/status filters.
func ListTasks(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Task{})

	if assignee := r.URL.Query().Get("assignee_id"); assignee != "" {
		query = query.Where("assignee_id = ?", assignee)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		http.Error(w, "Failed to fetch tasks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

// UpdateProgress lets the assignee report partial progress. The write is
// version-checked so it cannot clobber a racing completion submission.
func UpdateProgress(w http.ResponseWriter, r *http.Request) {
	workerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var task Task
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", chi.URLParam(r, "task_id")).Error; err != nil {
			return err
		}
		if task.AssigneeID != workerID {
			return ErrNotAssignee
		}
		if task.Status != StatusPending && task.Status != StatusInProgress {
			return ErrInvalidStateTransition
		}

		return applyVersioned(tx, &task, map[string]interface{}{
			"status":              StatusInProgress,
			"progress_percentage": req.ProgressPercentage,
		})
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// Complete handles a worker's completion submission and runs the two-strike
// location verification. Submitted evidence is persisted before the distance
// verdict so a worker's genuine proof of work survives a rejection.
func Complete(w http.ResponseWriter, r *http.Request) {
	workerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var task Task
	var verdict Verdict

	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", chi.URLParam(r, "task_id")).Error; err != nil {
			return err
		}
		if task.AssigneeID != workerID {
			return ErrNotAssignee
		}
		if task.Status != StatusPending && task.Status != StatusInProgress {
			return ErrInvalidStateTransition
		}

		if task.HasTarget() {
			if req.Lat == nil || req.Lon == nil {
				return zones.ErrInvalidCoordinates
			}
			fix := zones.Fix{Lat: *req.Lat, Lon: *req.Lon, Accuracy: req.Accuracy}
			if err := zones.DefaultLocator().CheckFix(fix); err != nil {
				return err
			}
		}

		// Evidence first, decision second.
		if err := applyVersioned(tx, &task, map[string]interface{}{
			"completion_lat":   req.Lat,
			"completion_lon":   req.Lon,
			"completion_notes": req.Notes,
			"photo_ref":        req.EvidenceRef,
		}); err != nil {
			return err
		}

		verdict = classifySubmission(task, req)
		now := time.Now()

		switch verdict.Kind {
		case VerdictFirstStrike:
			if err := applyVersioned(tx, &task, map[string]interface{}{
				"status":                     StatusInProgress,
				"failed_completion_attempts": verdict.Strike,
				"rejection_reason":           verdict.RejectionReason(cfg),
				"rejection_distance":         verdict.DistanceMeters,
				"rejection_lat":              req.Lat,
				"rejection_lon":              req.Lon,
				"rejected_at":                now,
			}); err != nil {
				return err
			}
			return discipline.Increment(tx, workerID, "Task completion submitted far from the task location")

		case VerdictRejected:
			if err := applyVersioned(tx, &task, map[string]interface{}{
				"status":                     StatusRejected,
				"auto_rejected":              true,
				"failed_completion_attempts": verdict.Strike,
				"rejection_reason":           verdict.RejectionReason(cfg),
				"rejection_distance":         verdict.DistanceMeters,
				"rejection_lat":              req.Lat,
				"rejection_lon":              req.Lon,
				"rejected_at":                now,
			}); err != nil {
				return err
			}
			return discipline.Increment(tx, workerID, "Task auto-rejected after repeated location mismatch")

		case VerdictAcceptWarn:
			return applyVersioned(tx, &task, map[string]interface{}{
				"status":                     StatusCompleted,
				"is_distance_warning":        true,
				"completion_notes":           verdict.WarningNote() + req.Notes,
				"failed_completion_attempts": 0,
				"completed_at":               now,
			})

		default: // VerdictAccept
			return applyVersioned(tx, &task, map[string]interface{}{
				"status":                     StatusCompleted,
				"failed_completion_attempts": 0,
				"completed_at":               now,
			})
		}
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	worker := task.AssigneeID.String()
	supervisor := task.SupervisorID.String()

	switch verdict.Kind {
	case VerdictFirstStrike:
		notify.Send(r.Context(), notifier, []string{worker, supervisor},
			"Task location mismatch",
			fmt.Sprintf("Task %q was submitted %d m from its location. Please move to the task site and resubmit.",
				task.Title, verdict.DistanceMeters))
		writeTaskJSONError(w, http.StatusConflict, ErrLocationMismatchRetry.Error(), task)
		return

	case VerdictRejected:
		notify.Send(r.Context(), notifier, []string{worker, supervisor},
			"Task auto-rejected",
			fmt.Sprintf("Task %q was rejected automatically after repeated location mismatches. "+
				"This is a technical rejection, not a judgment of your work. You can appeal this decision.",
				task.Title))
		writeTaskJSONError(w, http.StatusUnprocessableEntity, ErrLocationMismatchRejected.Error(), task)
		return
	}

	notify.Send(r.Context(), notifier, []string{supervisor},
		"Task completed", fmt.Sprintf("Task %q was completed by the assigned worker.", task.Title))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// Reset lets a supervisor clear a rejected task back to IN_PROGRESS so the
// worker can retry cleanly: rejection snapshot and strike counter are wiped.
func Reset(w http.ResponseWriter, r *http.Request) {
	var task Task
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", chi.URLParam(r, "task_id")).Error; err != nil {
			return err
		}
		if task.Status != StatusRejected {
			return ErrInvalidStateTransition
		}

		return applyVersioned(tx, &task, map[string]interface{}{
			"status":                     StatusInProgress,
			"auto_rejected":              false,
			"failed_completion_attempts": 0,
			"rejection_reason":           "",
			"rejection_distance":         nil,
			"rejection_lat":              nil,
			"rejection_lon":              nil,
			"rejected_at":                nil,
		})
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	notify.Send(r.Context(), notifier, []string{task.AssigneeID.String()},
		"Task reset", fmt.Sprintf("Task %q has been reset; you can submit it again.", task.Title))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// ApproveOverride accepts an auto-rejected task on a supervisor's judgment
// that the work was genuinely done. The rejection snapshot is preserved for
// audit, and the strikes this task cost the worker are handed back, capped
// at the worker's current count.
func ApproveOverride(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // notes are optional
	}

	var task Task
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", chi.URLParam(r, "task_id")).Error; err != nil {
			return err
		}
		if task.Status != StatusRejected || !task.AutoRejected {
			return ErrInvalidStateTransition
		}

		strikes := task.FailedCompletionAttempts
		now := time.Now()

		notes := task.CompletionNotes
		if req.Notes != "" {
			notes = notes + "\n[Supervisor override] " + req.Notes
		}

		if err := applyVersioned(tx, &task, map[string]interface{}{
			"status":                     StatusCompleted,
			"auto_rejected":              false,
			"failed_completion_attempts": 0,
			"completion_notes":           notes,
			"completed_at":               now,
		}); err != nil {
			return err
		}
		return discipline.Decrement(tx, task.AssigneeID, strikes)
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	notify.Send(r.Context(), notifier, []string{task.AssigneeID.String()},
		"Task rejection overridden",
		fmt.Sprintf("Your supervisor approved task %q despite the automatic rejection.", task.Title))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// Review is the human pass over a completed task: approve it, or reject it
// with notes. A human rejection is not an auto-rejection and is not
// appealable through the location-dispute flow.
func Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var task Task
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", chi.URLParam(r, "task_id")).Error; err != nil {
			return err
		}
		if task.Status != StatusCompleted {
			return ErrInvalidStateTransition
		}

		if req.Approve {
			return applyVersioned(tx, &task, map[string]interface{}{
				"status": StatusApproved,
			})
		}
		return applyVersioned(tx, &task, map[string]interface{}{
			"status":           StatusRejected,
			"auto_rejected":    false,
			"rejection_reason": req.Notes,
			"rejected_at":      time.Now(),
		})
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	outcome := "approved"
	if !req.Approve {
		outcome = "rejected"
	}
	notify.Send(r.Context(), notifier, []string{task.AssigneeID.String()},
		"Task reviewed", fmt.Sprintf("Task %q was %s by your supervisor.", task.Title, outcome))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// classifySubmission runs the pure verdict over the request's fix.
func classifySubmission(task Task, req completeRequest) Verdict {
	if !task.HasTarget() || req.Lat == nil || req.Lon == nil {
		return Verdict{Kind: VerdictAccept, DistanceMeters: -1}
	}
	return Classify(task, fixPoint(*req.Lat, *req.Lon), cfg)
}

// applyVersioned performs an optimistic-concurrency write: the update only
// lands if sync_version is unchanged since the task was read, and the
// in-memory copy is refreshed on success.
func applyVersioned(tx *gorm.DB, task *Task, updates map[string]interface{}) error {
	updates["sync_version"] = task.SyncVersion + 1

	res := tx.Model(&Task{}).
		Where("id = ? AND sync_version = ?", task.ID, task.SyncVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}
	return tx.First(task, "id = ?", task.ID).Error
}

func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, ErrNotAssignee):
		http.Error(w, "Task is not assigned to you", http.StatusForbidden)
	case errors.Is(err, ErrInvalidStateTransition):
		http.Error(w, "Operation not valid in the task's current state", http.StatusConflict)
	case errors.Is(err, ErrConcurrencyConflict):
		http.Error(w, "Task was modified concurrently, reload and retry", http.StatusConflict)
	case errors.Is(err, zones.ErrInvalidCoordinates),
		errors.Is(err, zones.ErrLowGPSAccuracy),
		errors.Is(err, zones.ErrOutsideServiceArea):
		http.Error(w, zones.WorkerMessage(err), http.StatusBadRequest)
	default:
		http.Error(w, "Task operation failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeTaskJSONError returns the strike outcomes as structured payloads so
// the mobile client can show the retry/appeal flow alongside the task state.
func writeTaskJSONError(w http.ResponseWriter, status int, message string, task Task) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": message,
		"task":  task,
	})
}
