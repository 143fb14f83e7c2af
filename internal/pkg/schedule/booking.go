// Package schedule decides whether weekly course slots collide.
//
// A Booking is the weekday, time-of-day range and optional date range of a
// course offering. Time ranges are half-open, so a class ending at 12:00 does
// not collide with one starting at 12:00. Date ranges are inclusive on both
// ends. A booking without a date range repeats on its weekday indefinitely.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidBooking is returned by Validate.
var ErrInvalidBooking = errors.New("invalid booking")

// Booking is the scheduling facet of a course offering.
type Booking struct {
	ID        int64
	Title     string
	Weekday   Weekday
	StartTime *Clock
	EndTime   *Clock
	StartDate *time.Time
	EndDate   *time.Time
}

// HasTimes reports whether both ends of the time range are set.
func (b Booking) HasTimes() bool {
	return b.StartTime != nil && b.EndTime != nil
}

// HasDateRange reports whether both ends of the date range are set.
func (b Booking) HasDateRange() bool {
	return b.StartDate != nil && b.EndDate != nil
}

// Validate checks a candidate before it is compared with existing bookings.
func Validate(b Booking) error {
	if !b.Weekday.Valid() {
		return fmt.Errorf("%w: weekday must be between 0 (Monday) and 6 (Sunday)", ErrInvalidBooking)
	}
	if !b.HasTimes() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalidBooking)
	}
	if !b.StartTime.Valid() || !b.EndTime.Valid() {
		return fmt.Errorf("%w: time of day out of range", ErrInvalidBooking)
	}
	if *b.StartTime >= *b.EndTime {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidBooking)
	}
	if (b.StartDate == nil) != (b.EndDate == nil) {
		return fmt.Errorf("%w: start and end date must be given together", ErrInvalidBooking)
	}
	if b.HasDateRange() && dateOf(*b.StartDate).After(dateOf(*b.EndDate)) {
		return fmt.Errorf("%w: start date must not be after end date", ErrInvalidBooking)
	}
	return nil
}

// dateOf truncates t to its calendar day so stored dates compare by day only.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
