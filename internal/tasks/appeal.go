package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReinstateFromAppeal reverses an automatic rejection after a successful
// appeal: the task becomes COMPLETED, the auto-rejection flag and reason are
// cleared, and a completion timestamp is set. The distance/coordinate part
// of the rejection snapshot survives on the row for audit.
//
// Returns the refreshed task and the number of strikes the rejection had
// cost the worker, so the caller can hand them back through the ledger.
func ReinstateFromAppeal(tx *gorm.DB, taskID uuid.UUID) (Task, int, error) {
	var task Task
	if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
		return Task{}, 0, err
	}
	if task.Status != StatusRejected || !task.AutoRejected {
		return Task{}, 0, ErrInvalidStateTransition
	}

	strikes := task.FailedCompletionAttempts

	err := applyVersioned(tx, &task, map[string]interface{}{
		"status":                     StatusCompleted,
		"auto_rejected":              false,
		"rejection_reason":           "",
		"failed_completion_attempts": 0,
		"completed_at":               time.Now(),
	})
	if err != nil {
		return Task{}, 0, err
	}
	return task, strikes, nil
}
