// Package calendar renders weekly bookings as an iCalendar feed.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

const utcStamp = "20060102T150405Z"

var byDay = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Entry is one recurring class in the feed.
type Entry struct {
	UID         string
	Summary     string
	Description string
	Booking     schedule.Booking
}

// Build returns the serialized calendar. Undated bookings start recurring on
// their first meeting on or after from. Entries with no remaining meeting are
// skipped.
func Build(name string, entries []Entry, from time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EduLearn//Timetable//EN")
	cal.SetName(name)
	cal.SetXWRTimezone(loc.String())

	stamp := from.UTC()
	for _, e := range entries {
		b := e.Booking
		if !b.HasTimes() || !b.Weekday.Valid() {
			continue
		}
		first, ok := schedule.NextOccurrence(b, from.In(loc))
		if !ok {
			continue
		}

		event := cal.AddEvent(e.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(b.StartTime.On(first, loc))
		event.SetEndAt(b.EndTime.On(first, loc))
		event.SetSummary(e.Summary)
		if e.Description != "" {
			event.SetDescription(e.Description)
		}
		event.AddRrule(rrule(b, loc))
	}

	return cal.Serialize()
}

func rrule(b schedule.Booking, loc *time.Location) string {
	rule := fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", byDay[b.Weekday])
	if b.HasDateRange() {
		until := b.EndTime.On(*b.EndDate, loc).UTC()
		rule += ";UNTIL=" + until.Format(utcStamp)
	}
	return rule
}
