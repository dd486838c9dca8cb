package attendance

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.Local)
}

func TestLateMinutes_WithinGrace(t *testing.T) {
	// Scheduled 08:00, 15 minute grace: 08:10 is on time.
	if got := LateMinutes(at(8, 10), 480, 15); got != 0 {
		t.Errorf("expected 0 late minutes, got %d", got)
	}
}

func TestLateMinutes_MeasuredFromGraceEnd(t *testing.T) {
	// Scheduled 08:00, 15 minute grace, check-in 08:20: 5 minutes late,
	// not 20 — lateness starts when the grace window ends.
	if got := LateMinutes(at(8, 20), 480, 15); got != 5 {
		t.Errorf("expected 5 late minutes, got %d", got)
	}
}

func TestLateMinutes_Early(t *testing.T) {
	if got := LateMinutes(at(7, 30), 480, 15); got != 0 {
		t.Errorf("early check-in must not be negative, got %d", got)
	}
}

func TestWorkDate(t *testing.T) {
	d := workDate(at(8, 20))
	if d.Hour() != 0 || d.Minute() != 0 || d.Day() != 10 {
		t.Errorf("workDate should truncate to midnight, got %v", d)
	}
}
