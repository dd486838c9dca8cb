package attendance

import "time"

// LateMinutes measures lateness from the end of the grace window, not from
// the scheduled start: a worker with an 08:00 start and 15 grace minutes who
// checks in at 08:20 is 5 minutes late, not 20.
func LateMinutes(now time.Time, scheduledStartMinutes, graceMinutes int) int {
	minuteOfDay := now.Hour()*60 + now.Minute()
	late := minuteOfDay - (scheduledStartMinutes + graceMinutes)
	if late < 0 {
		return 0
	}
	return late
}

// workDate truncates a timestamp to its calendar day in local time.
func workDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
