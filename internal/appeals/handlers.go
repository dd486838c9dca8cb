package appeals

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/db"
	"github.com/MuniTrack/MT-Backend/internal/discipline"
	"github.com/MuniTrack/MT-Backend/internal/notify"
	"github.com/MuniTrack/MT-Backend/internal/tasks"
	"github.com/MuniTrack/MT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateAppeal        = errors.New("an appeal already exists for this entity")
	ErrNotOwner               = errors.New("disputed entity does not belong to this worker")
	ErrNotAppealable          = errors.New("entity is not in an auto-rejected state")
	ErrUnknownEntityType      = errors.New("unknown disputable entity type")
	ErrInvalidStateTransition = errors.New("appeal is already resolved")
)

type submitRequest struct {
	EntityType  EntityType `json:"entity_type" validate:"required"`
	EntityID    uuid.UUID  `json:"entity_id" validate:"required"`
	Explanation string     `json:"explanation" validate:"required,min=10"`
	EvidenceRef string     `json:"evidence_ref"`
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// Submit opens an appeal against an auto-rejected entity. The rejection
// context is copied onto the appeal so later task mutations cannot distort
// what the reviewer sees.
func Submit(w http.ResponseWriter, r *http.Request) {
	workerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.EntityType.Valid() {
		http.Error(w, ErrUnknownEntityType.Error(), http.StatusBadRequest)
		return
	}

	var appeal Appeal
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		// Closed over entity kinds: each arm builds its own snapshot.
		switch req.EntityType {
		case EntityTask:
			var task tasks.Task
			if err := tx.First(&task, "id = ?", req.EntityID).Error; err != nil {
				return err
			}
			if task.AssigneeID != workerID {
				return ErrNotOwner
			}
			if task.Status != tasks.StatusRejected || !task.AutoRejected {
				return ErrNotAppealable
			}

			appeal = Appeal{
				EntityType:     EntityTask,
				EntityID:       task.ID,
				WorkerID:       workerID,
				Explanation:    req.Explanation,
				EvidenceRef:    req.EvidenceRef,
				ExpectedLat:    task.TargetLat,
				ExpectedLon:    task.TargetLon,
				ActualLat:      task.RejectionLat,
				ActualLon:      task.RejectionLon,
				DistanceMeters: task.RejectionDistance,
				Reason:         task.RejectionReason,
				Status:         StatusPending,
			}
		default:
			return ErrUnknownEntityType
		}

		var count int64
		if err := tx.Model(&Appeal{}).
			Where("entity_type = ? AND entity_id = ?", req.EntityType, req.EntityID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateAppeal
		}
		return tx.Create(&appeal).Error
	})
	if err != nil {
		writeAppealError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appeal)
}

// Review resolves a pending appeal. Approval of a task appeal reinstates the
// task and hands back the strikes the auto-rejection cost the worker;
// rejection leaves the disputed entity untouched. Either outcome is
// terminal: the resolution write is conditioned on PENDING status, so of two
// racing reviewers exactly one lands and the other gets a conflict.
func Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var appeal Appeal
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appeal, "id = ?", chi.URLParam(r, "appeal_id")).Error; err != nil {
			return err
		}
		if appeal.Status != StatusPending {
			return ErrInvalidStateTransition
		}

		status := StatusApproved
		if !req.Approve {
			status = StatusRejected
		}

		res := tx.Model(&Appeal{}).
			Where("id = ? AND status = ?", appeal.ID, StatusPending).
			Updates(map[string]interface{}{
				"status":       status,
				"reviewer_id":  reviewerID,
				"reviewed_at":  time.Now(),
				"review_notes": req.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStateTransition
		}
		if err := tx.First(&appeal, "id = ?", appeal.ID).Error; err != nil {
			return err
		}

		if !req.Approve {
			return nil
		}

		switch appeal.EntityType {
		case EntityTask:
			_, strikes, err := tasks.ReinstateFromAppeal(tx, appeal.EntityID)
			if err != nil {
				return err
			}
			return discipline.Decrement(tx, appeal.WorkerID, strikes)
		default:
			return ErrUnknownEntityType
		}
	})
	if err != nil {
		writeAppealError(w, err)
		return
	}

	outcome := "approved"
	if appeal.Status == StatusRejected {
		outcome = "rejected"
	}
	notify.Send(r.Context(), notifier, []string{appeal.WorkerID.String()},
		"Appeal resolved", fmt.Sprintf("Your appeal was %s.", outcome))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appeal)
}

// GetAppeal returns a single appeal.
func GetAppeal(w http.ResponseWriter, r *http.Request) {
	var appeal Appeal
	if err := db.DB.First(&appeal, "id = ?", chi.URLParam(r, "appeal_id")).Error; err != nil {
		http.Error(w, "Appeal not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appeal)
}

// ListAppeals returns appeals for review, optionally filtered by status.
func ListAppeals(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Appeal{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appeals []Appeal
	if err := query.Order("created_at ASC").Find(&appeals).Error; err != nil {
		http.Error(w, "Failed to fetch appeals: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appeals)
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

func writeAppealError(w http.ResponseWriter, err error) {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "Disputed entity or appeal not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		http.Error(w, "You can only appeal your own rejections", http.StatusForbidden)
	case errors.Is(err, ErrNotAppealable), errors.Is(err, tasks.ErrInvalidStateTransition):
		http.Error(w, "Only automatically rejected entities can be appealed", http.StatusConflict)
	case errors.Is(err, ErrDuplicateAppeal),
		errors.As(err, &pgErr) && pgErr.Code == "23505":
		http.Error(w, "An appeal for this entity already exists", http.StatusConflict)
	case errors.Is(err, ErrInvalidStateTransition):
		http.Error(w, "This appeal has already been resolved", http.StatusConflict)
	case errors.Is(err, ErrUnknownEntityType):
		http.Error(w, ErrUnknownEntityType.Error(), http.StatusBadRequest)
	case errors.Is(err, tasks.ErrConcurrencyConflict):
		http.Error(w, "Task was modified concurrently, retry the review", http.StatusConflict)
	default:
		http.Error(w, "Appeal operation failed: "+err.Error(), http.StatusInternalServerError)
	}
}
