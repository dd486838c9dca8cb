// Package discipline is the only mutation path for a worker's warning
// counter, which keeps the counter auditable as a pure function of
// verification-engine events.
package discipline

import (
	"fmt"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/workers"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Increment adds one warning to the worker's record and stamps the reason.
// It runs inside the caller's transaction so the warning commits or rolls
// back with the state transition that caused it.
func Increment(tx *gorm.DB, workerID uuid.UUID, reason string) error {
	now := time.Now()
	res := tx.Model(&workers.Worker{}).
		Where("id = ?", workerID).
		Updates(map[string]interface{}{
			"warning_count":       gorm.Expr("warning_count + 1"),
			"last_warning_at":     now,
			"last_warning_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("increment warning count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment warning count: worker %s not found", workerID)
	}
	return nil
}

// Decrement removes up to amount warnings, flooring at zero. Used by
// override/appeal remediation to hand back the strikes a wrongly rejected
// task cost the worker.
func Decrement(tx *gorm.DB, workerID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	res := tx.Model(&workers.Worker{}).
		Where("id = ?", workerID).
		Update("warning_count", gorm.Expr("GREATEST(warning_count - ?, 0)", amount))
	if res.Error != nil {
		return fmt.Errorf("decrement warning count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decrement warning count: worker %s not found", workerID)
	}
	return nil
}
