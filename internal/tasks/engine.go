package tasks

import (
	"errors"
	"fmt"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/geomath"
)

var (
	// ErrLocationMismatchRetry is the first-strike outcome: the submission
	// was too far from the target, but the worker may move and resubmit.
	ErrLocationMismatchRetry = errors.New("completion location too far from task target; please retry from the task site")
	// ErrLocationMismatchRejected is the second-strike outcome: the task is
	// auto-rejected pending appeal or supervisor override.
	ErrLocationMismatchRejected = errors.New("completion location rejected after repeated mismatch")

	ErrInvalidStateTransition = errors.New("operation not valid in the task's current state")
	ErrConcurrencyConflict    = errors.New("task was modified concurrently, reload and retry")
	ErrNotAssignee            = errors.New("task is not assigned to this worker")
)

// Verdict kinds produced by the distance check on a completion submission.
const (
	VerdictAccept      = "ACCEPT"
	VerdictAcceptWarn  = "ACCEPT_WITH_WARNING"
	VerdictFirstStrike = "FIRST_STRIKE"
	VerdictRejected    = "REJECTED"
)

// Verdict is the engine's decision for one completion submission.
type Verdict struct {
	Kind string
	// DistanceMeters is the great-circle distance from the task target to
	// the submitted fix; -1 when the task has no target.
	DistanceMeters int
	// Strike is the failed-attempt count including this submission; zero
	// for accepted submissions.
	Strike int
}

// Classify applies the two-strike policy to a completion fix without
// touching any state.
//
// No target coordinates means there is nothing to verify and the submission
// is accepted unconditionally. Beyond the hard threshold, the first failure
// invites a retry and the second converts the mismatch into an automatic
// rejection. Between the warning and hard thresholds the completion is
// accepted but flagged.
func Classify(task Task, fix geomath.Point, cfg config.Config) Verdict {
	if !task.HasTarget() {
		return Verdict{Kind: VerdictAccept, DistanceMeters: -1}
	}

	d := geomath.Distance(*task.TargetLat, *task.TargetLon, fix.Lat, fix.Lon)

	if d > cfg.HardRejectDistanceMeters {
		strike := task.FailedCompletionAttempts + 1
		if strike == 1 {
			return Verdict{Kind: VerdictFirstStrike, DistanceMeters: d, Strike: strike}
		}
		return Verdict{Kind: VerdictRejected, DistanceMeters: d, Strike: strike}
	}

	if d > cfg.WarningDistanceMeters {
		return Verdict{Kind: VerdictAcceptWarn, DistanceMeters: d}
	}
	return Verdict{Kind: VerdictAccept, DistanceMeters: d}
}

// Accepted reports whether the verdict completes the task.
func (v Verdict) Accepted() bool {
	return v.Kind == VerdictAccept || v.Kind == VerdictAcceptWarn
}

// RejectionReason renders the audit string stored on the task's rejection
// snapshot.
func (v Verdict) RejectionReason(cfg config.Config) string {
	return fmt.Sprintf(
		"Completion submitted %d m from the task location (limit %d m), attempt %d",
		v.DistanceMeters, cfg.HardRejectDistanceMeters, v.Strike,
	)
}

// WarningNote is prepended to the completion notes on an accepted-with-
// warning submission so supervisors see the soft signal inline.
func (v Verdict) WarningNote() string {
	return fmt.Sprintf("[Distance warning: completed %d m from the task location] ", v.DistanceMeters)
}
