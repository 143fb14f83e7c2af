package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

type enrollmentFixture struct {
	courses     *fakeCourses
	enrollments *fakeEnrollments
	assignments *fakeAssignments
	submissions *fakeSubmissions
	svc         EnrollmentService
}

func newEnrollmentFixture() *enrollmentFixture {
	courses := newFakeCourses()
	users := newFakeUsers()
	assignments := newFakeAssignments()
	f := &enrollmentFixture{
		courses:     courses,
		enrollments: newFakeEnrollments(courses, users),
		assignments: assignments,
		submissions: &fakeSubmissions{assignments: assignments},
	}
	pending := &fakePending{assignments: assignments, submissions: f.submissions}
	svc := NewEnrollmentService(courses, f.enrollments, pending, authz.NewAuthorizer(), time.UTC, zerolog.Nop())
	svc.(*enrollmentServiceImpl).now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

// course stores an active course taught by instructorActor.
func (f *enrollmentFixture) course(t *testing.T, title string, day schedule.Weekday, from, to, startDate, endDate string) *models.Course {
	t.Helper()
	c := &models.Course{
		Title:        title,
		Category:     models.CategoryMaking,
		InstructorID: instructorActor.UserID,
		Weekday:      day,
		StartTime:    *mustClock(t, from),
		EndTime:      *mustClock(t, to),
		IsActive:     true,
	}
	if startDate != "" {
		c.StartDate = mustDate(t, startDate).TimePtr()
		c.EndDate = mustDate(t, endDate).TimePtr()
	}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func TestEnroll_ConflictWithExistingEnrollment(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	a := f.course(t, "Robotics", schedule.Monday, "10:00", "12:00", "2024-03-01", "2024-06-30")
	b := f.course(t, "Drones", schedule.Monday, "11:00", "13:00", "2024-04-01", "2024-04-30")

	_, err := f.svc.Enroll(ctx, studentActor, a.ID)
	require.NoError(t, err)

	_, err = f.svc.Enroll(ctx, studentActor, b.ID)
	require.True(t, errors.Is(err, apperrors.ErrScheduleConflict))
	custom, ok := apperrors.AsCustom(err)
	require.True(t, ok)
	assert.Equal(t, a.ID, custom.Details["conflictingCourseId"])
}

func TestEnroll_CompletedEnrollmentsDoNotBlock(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	a := f.course(t, "Robotics", schedule.Tuesday, "10:00", "12:00", "", "")
	b := f.course(t, "Robotics II", schedule.Tuesday, "10:00", "12:00", "", "")

	_, err := f.svc.Enroll(ctx, studentActor, a.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateProgress(ctx, studentActor, a.ID, 100)
	require.NoError(t, err)

	_, err = f.svc.Enroll(ctx, studentActor, b.ID)
	assert.NoError(t, err)
}

func TestEnroll_Rejections(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	open := f.course(t, "Open", schedule.Friday, "10:00", "11:00", "", "")
	ended := f.course(t, "Ended", schedule.Friday, "13:00", "14:00", "2023-01-01", "2023-02-01")

	_, err := f.svc.Enroll(ctx, instructorActor, open.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.Enroll(ctx, studentActor, ended.ID)
	assert.True(t, errors.Is(err, apperrors.ErrCourseInactive))

	_, err = f.svc.Enroll(ctx, studentActor, open.ID)
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, studentActor, open.ID)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyEnrolled))

	_, err = f.svc.Enroll(ctx, studentActor, 999)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestEnroll_FullCourse(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	c := f.course(t, "Tiny", schedule.Saturday, "10:00", "11:00", "", "")
	c.MaxStudents = 1
	require.NoError(t, f.courses.Update(ctx, c))

	_, err := f.svc.Enroll(ctx, studentActor, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Enroll(ctx, authz.Actor{UserID: 21, Role: models.RoleStudent}, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestUpdateProgress(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	c := f.course(t, "Coding", schedule.Monday, "10:00", "11:00", "", "")

	_, err := f.svc.UpdateProgress(ctx, studentActor, c.ID, 50)
	assert.True(t, errors.Is(err, apperrors.ErrNotEnrolled))

	_, err = f.svc.Enroll(ctx, studentActor, c.ID)
	require.NoError(t, err)

	e, err := f.svc.UpdateProgress(ctx, studentActor, c.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, e.Progress)
	assert.False(t, e.IsCompleted)
	assert.NotNil(t, e.LastAccessedAt)

	e, err = f.svc.UpdateProgress(ctx, studentActor, c.ID, 100)
	require.NoError(t, err)
	assert.True(t, e.IsCompleted)

	_, err = f.svc.UpdateProgress(ctx, studentActor, c.ID, 101)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestCalendarAndDashboard(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	mon := f.course(t, "Monday class", schedule.Monday, "10:00", "11:00", "", "")
	wed := f.course(t, "Wednesday class", schedule.Wednesday, "09:00", "10:00", "2024-04-10", "2024-04-24")

	for _, id := range []int64{mon.ID, wed.ID} {
		_, err := f.svc.Enroll(ctx, studentActor, id)
		require.NoError(t, err)
	}

	cal, err := f.svc.Calendar(ctx, studentActor, 2024, 4)
	require.NoError(t, err)
	// Mondays of April 2024: 1, 8, 15, 22, 29.
	for _, day := range []int{1, 8, 15, 22, 29} {
		require.Len(t, cal.Days[day], 1, "day %d", day)
		assert.Equal(t, mon.ID, cal.Days[day][0].CourseID)
	}
	for _, day := range []int{10, 17, 24} {
		require.Len(t, cal.Days[day], 1, "day %d", day)
		assert.Equal(t, wed.ID, cal.Days[day][0].CourseID)
	}
	assert.Empty(t, cal.Days[3])

	_, err = f.svc.Calendar(ctx, studentActor, 2024, 13)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	dash, err := f.svc.Dashboard(ctx, studentActor)
	require.NoError(t, err)
	assert.Len(t, dash.Weekly["Monday"], 1)
	assert.Len(t, dash.Weekly["Wednesday"], 1)
	require.Len(t, dash.Upcoming, 2)
	assert.Equal(t, "2024-04-01", dash.Upcoming[0].Date)
	assert.Equal(t, 0, dash.Upcoming[0].DaysUntil)
	assert.Equal(t, "2024-04-10", dash.Upcoming[1].Date)
	assert.Equal(t, 9, dash.Upcoming[1].DaysUntil)
}

func TestDashboard_ClassAlreadyStartedTodayMovesToNextWeek(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	mon := f.course(t, "Morning class", schedule.Monday, "10:00", "11:00", "", "")
	wed := f.course(t, "Wednesday class", schedule.Wednesday, "09:00", "10:00", "", "")
	for _, id := range []int64{mon.ID, wed.ID} {
		_, err := f.svc.Enroll(ctx, studentActor, id)
		require.NoError(t, err)
	}

	f.svc.(*enrollmentServiceImpl).now = func() time.Time { return time.Date(2024, 4, 1, 15, 0, 0, 0, time.UTC) }
	dash, err := f.svc.Dashboard(ctx, studentActor)
	require.NoError(t, err)

	require.Len(t, dash.Upcoming, 2)
	assert.Equal(t, wed.ID, dash.Upcoming[0].CourseID)
	assert.Equal(t, "2024-04-03", dash.Upcoming[0].Date)
	assert.Equal(t, 2, dash.Upcoming[0].DaysUntil)
	assert.Equal(t, mon.ID, dash.Upcoming[1].CourseID)
	assert.Equal(t, "2024-04-08", dash.Upcoming[1].Date)
	assert.Equal(t, 7, dash.Upcoming[1].DaysUntil)

	f.svc.(*enrollmentServiceImpl).now = func() time.Time { return time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC) }
	dash, err = f.svc.Dashboard(ctx, studentActor)
	require.NoError(t, err)
	assert.Equal(t, wed.ID, dash.Upcoming[0].CourseID)
}

func TestDashboard_PendingAssignments(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	ongoing := f.course(t, "Robotics", schedule.Tuesday, "10:00", "11:00", "", "")
	done := f.course(t, "Drones", schedule.Thursday, "10:00", "11:00", "", "")
	for _, id := range []int64{ongoing.ID, done.ID} {
		_, err := f.svc.Enroll(ctx, studentActor, id)
		require.NoError(t, err)
	}
	_, err := f.svc.UpdateProgress(ctx, studentActor, done.ID, 100)
	require.NoError(t, err)

	due := func(days int) *time.Time {
		d := fixedNow.AddDate(0, 0, days)
		return &d
	}
	add := func(courseID int64, title string, dueDate *time.Time) *models.Assignment {
		a := &models.Assignment{CourseID: courseID, Title: title, DueDate: dueDate, MaxScore: 100}
		require.NoError(t, f.assignments.Create(ctx, a))
		return a
	}
	later := add(ongoing.ID, "Later", due(5))
	soon := add(ongoing.ID, "Soon", due(1))
	add(ongoing.ID, "Overdue", due(-1))
	add(ongoing.ID, "Open ended", nil)
	add(done.ID, "Finished course", due(2))
	handedIn := add(ongoing.ID, "Handed in", due(3))
	_, err = f.submissions.Upsert(ctx, &models.Submission{AssignmentID: handedIn.ID, StudentID: studentActor.UserID, Content: "done"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		add(ongoing.ID, "Far", due(30+i))
	}

	dash, err := f.svc.Dashboard(ctx, studentActor)
	require.NoError(t, err)

	require.Len(t, dash.PendingAssignments, 5)
	assert.Equal(t, soon.ID, dash.PendingAssignments[0].AssignmentID)
	assert.Equal(t, "Robotics", dash.PendingAssignments[0].CourseTitle)
	assert.Equal(t, later.ID, dash.PendingAssignments[1].AssignmentID)
	for _, p := range dash.PendingAssignments {
		assert.Equal(t, ongoing.ID, p.CourseID)
		assert.NotEqual(t, handedIn.ID, p.AssignmentID)
	}
}

func TestExportICS(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	c := f.course(t, "Robotics", schedule.Thursday, "15:00", "16:30", "", "")
	_, err := f.svc.Enroll(ctx, studentActor, c.ID)
	require.NoError(t, err)

	out, err := f.svc.ExportICS(ctx, studentActor)
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	event := cal.Events()[0]
	assert.Equal(t, "Robotics", event.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=TH", event.GetProperty(ics.ComponentPropertyRrule).Value)
}

func TestRosterRequiresCourseInstructor(t *testing.T) {
	f := newEnrollmentFixture()
	ctx := context.Background()
	c := f.course(t, "Coding", schedule.Monday, "10:00", "11:00", "", "")
	_, err := f.svc.Enroll(ctx, studentActor, c.ID)
	require.NoError(t, err)

	roster, err := f.svc.Roster(ctx, instructorActor, c.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, studentActor.UserID, roster[0].StudentID)

	_, err = f.svc.Roster(ctx, otherInstructor, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.Roster(ctx, studentActor, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}
