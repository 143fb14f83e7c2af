package schedule

import "time"

// OccursOn reports whether b meets on the calendar day of day.
func OccursOn(b Booking, day time.Time) bool {
	if WeekdayOf(day) != b.Weekday {
		return false
	}
	if !b.HasDateRange() {
		return true
	}
	d := dateOf(day)
	return !d.Before(dateOf(*b.StartDate)) && !d.After(dateOf(*b.EndDate))
}

// NextOccurrence returns the first day on or after from on which b meets.
// It reports false once the booking's date range has ended.
func NextOccurrence(b Booking, from time.Time) (time.Time, bool) {
	start := dateOf(from)
	if b.HasDateRange() && start.Before(dateOf(*b.StartDate)) {
		start = dateOf(*b.StartDate)
	}
	offset := (int(b.Weekday) - int(WeekdayOf(start)) + 7) % 7
	next := start.AddDate(0, 0, offset)
	if b.HasDateRange() && next.After(dateOf(*b.EndDate)) {
		return time.Time{}, false
	}
	return next, true
}

// NextMeeting is NextOccurrence for a wall-clock moment. A meeting on now's
// calendar day counts only while its start time is still ahead.
func NextMeeting(b Booking, now time.Time) (time.Time, bool) {
	today := dateOf(now)
	next, ok := NextOccurrence(b, today)
	if !ok || !next.Equal(today) {
		return next, ok
	}
	if b.StartTime != nil && *b.StartTime <= ClockOf(now) {
		return NextOccurrence(b, today.AddDate(0, 0, 1))
	}
	return next, true
}

// DaysUntil counts whole days between from and to.
func DaysUntil(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}
