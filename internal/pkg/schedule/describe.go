package schedule

import "fmt"

const dateLayout = "2006-01-02"

// TimeRange renders "10:00-12:00", or "time unset" for malformed bookings.
func TimeRange(b Booking) string {
	if !b.HasTimes() {
		return "time unset"
	}
	return fmt.Sprintf("%s-%s", *b.StartTime, *b.EndTime)
}

// DateRange renders "2024-03-01 ~ 2024-06-30", or "ongoing" without a range.
func DateRange(b Booking) string {
	if !b.HasDateRange() {
		return "ongoing"
	}
	return fmt.Sprintf("%s ~ %s", b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
}

// Describe renders a booking for conflict messages, e.g.
// "Monday 10:00-12:00 (2024-03-01 ~ 2024-06-30)".
func Describe(b Booking) string {
	s := fmt.Sprintf("%s %s (%s)", b.Weekday, TimeRange(b), DateRange(b))
	if b.Title != "" {
		s = fmt.Sprintf("%q on %s", b.Title, s)
	}
	return s
}
