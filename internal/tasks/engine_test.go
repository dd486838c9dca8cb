package tasks

import (
	"testing"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/geomath"
)

func engineConfig() config.Config {
	c := config.Default()
	c.HardRejectDistanceMeters = 100
	c.WarningDistanceMeters = 50
	return c
}

func targetTask(attempts int) Task {
	lat, lon := 31.9, 35.2
	return Task{
		TargetLat:                &lat,
		TargetLon:                &lon,
		Status:                   StatusInProgress,
		FailedCompletionAttempts: attempts,
	}
}

// pointAtMeters returns a fix roughly d meters north of the task target.
func pointAtMeters(d float64) geomath.Point {
	return geomath.Point{Lat: 31.9 + d/111195.0, Lon: 35.2}
}

func TestClassify_NoTargetAcceptsUnconditionally(t *testing.T) {
	task := Task{Status: StatusInProgress}
	v := Classify(task, geomath.Point{Lat: 48.8, Lon: 2.3}, engineConfig())
	if v.Kind != VerdictAccept {
		t.Errorf("expected ACCEPT, got %s", v.Kind)
	}
	if v.DistanceMeters != -1 {
		t.Errorf("expected sentinel distance -1, got %d", v.DistanceMeters)
	}
}

func TestClassify_CloseSubmissionAccepted(t *testing.T) {
	v := Classify(targetTask(0), pointAtMeters(20), engineConfig())
	if v.Kind != VerdictAccept {
		t.Errorf("expected ACCEPT at 20m, got %s (d=%d)", v.Kind, v.DistanceMeters)
	}
}

func TestClassify_WarningBand(t *testing.T) {
	v := Classify(targetTask(0), pointAtMeters(75), engineConfig())
	if v.Kind != VerdictAcceptWarn {
		t.Errorf("expected ACCEPT_WITH_WARNING at 75m, got %s (d=%d)", v.Kind, v.DistanceMeters)
	}
	if v.Strike != 0 {
		t.Errorf("accepted submission must not carry a strike, got %d", v.Strike)
	}
}

func TestClassify_FirstStrike(t *testing.T) {
	v := Classify(targetTask(0), pointAtMeters(250), engineConfig())
	if v.Kind != VerdictFirstStrike {
		t.Errorf("expected FIRST_STRIKE at 250m, got %s", v.Kind)
	}
	if v.Strike != 1 {
		t.Errorf("expected strike 1, got %d", v.Strike)
	}
}

func TestClassify_SecondStrikeRejects(t *testing.T) {
	v := Classify(targetTask(1), pointAtMeters(250), engineConfig())
	if v.Kind != VerdictRejected {
		t.Errorf("expected REJECTED on second failure, got %s", v.Kind)
	}
	if v.Strike != 2 {
		t.Errorf("expected strike 2, got %d", v.Strike)
	}
}

func TestClassify_ThirdStrikeStillRejects(t *testing.T) {
	v := Classify(targetTask(2), pointAtMeters(250), engineConfig())
	if v.Kind != VerdictRejected {
		t.Errorf("expected REJECTED on third failure, got %s", v.Kind)
	}
}

func TestClassify_FreshTaskDoesNotInheritStrikes(t *testing.T) {
	// A different task with a clean counter gets the retry invitation even
	// if the worker just burned two strikes elsewhere.
	v := Classify(targetTask(0), pointAtMeters(250), engineConfig())
	if v.Kind != VerdictFirstStrike {
		t.Errorf("expected FIRST_STRIKE on a fresh task, got %s", v.Kind)
	}
}

func TestClassify_HardThresholdIsExclusive(t *testing.T) {
	// Exactly at the hard threshold is a warning-band accept, not a strike:
	// only distances strictly greater than the limit are rejected. The
	// truncated integer distance makes "exactly 100" representable.
	task := targetTask(0)
	cfg := engineConfig()

	at := pointAtMeters(100)
	d := geomath.Distance(*task.TargetLat, *task.TargetLon, at.Lat, at.Lon)
	if d > 100 {
		t.Skipf("fixture drift: computed distance %d", d)
	}
	v := Classify(task, at, cfg)
	if v.Kind != VerdictAcceptWarn {
		t.Errorf("expected ACCEPT_WITH_WARNING at the threshold, got %s (d=%d)", v.Kind, v.DistanceMeters)
	}
}

func TestVerdictAccepted(t *testing.T) {
	if !(Verdict{Kind: VerdictAccept}).Accepted() {
		t.Error("ACCEPT must be accepted")
	}
	if !(Verdict{Kind: VerdictAcceptWarn}).Accepted() {
		t.Error("ACCEPT_WITH_WARNING must be accepted")
	}
	if (Verdict{Kind: VerdictFirstStrike}).Accepted() {
		t.Error("FIRST_STRIKE must not be accepted")
	}
	if (Verdict{Kind: VerdictRejected}).Accepted() {
		t.Error("REJECTED must not be accepted")
	}
}
