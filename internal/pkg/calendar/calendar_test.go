package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

func clockPtr(h, m int) *schedule.Clock {
	c := schedule.NewClock(h, m)
	return &c
}

func day(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestBuild(t *testing.T) {
	entries := []Entry{
		{
			UID:     "course-1@edulearn",
			Summary: "Intro to Robotics",
			Booking: schedule.Booking{
				Weekday:   schedule.Wednesday,
				StartTime: clockPtr(10, 0),
				EndTime:   clockPtr(12, 0),
				StartDate: day("2024-04-10"),
				EndDate:   day("2024-06-26"),
			},
		},
		{
			UID:     "course-2@edulearn",
			Summary: "Python Basics",
			Booking: schedule.Booking{Weekday: schedule.Friday, StartTime: clockPtr(14, 0), EndTime: clockPtr(15, 30)},
		},
		{
			UID:     "course-3@edulearn",
			Summary: "Finished",
			Booking: schedule.Booking{
				Weekday:   schedule.Monday,
				StartTime: clockPtr(9, 0),
				EndTime:   clockPtr(10, 0),
				StartDate: day("2023-01-02"),
				EndDate:   day("2023-02-27"),
			},
		},
	}

	out := Build("My timetable", entries, *day("2024-04-01"), time.UTC)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	robotics := events[0]
	assert.Equal(t, "Intro to Robotics", robotics.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20240410T100000Z", robotics.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=WE;UNTIL=20240626T120000Z", robotics.GetProperty(ics.ComponentPropertyRrule).Value)

	python := events[1]
	assert.Equal(t, "20240405T140000Z", python.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=FR", python.GetProperty(ics.ComponentPropertyRrule).Value)
}
