package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

var (
	instructorActor = authz.Actor{UserID: 10, Role: models.RoleInstructor}
	otherInstructor = authz.Actor{UserID: 11, Role: models.RoleInstructor}
	studentActor    = authz.Actor{UserID: 20, Role: models.RoleStudent}
	managerActor    = authz.Actor{UserID: 90, Role: models.RoleManager}
)

// 2024-04-01 was a Monday.
var fixedNow = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func mustDate(t *testing.T, s string) *dto.Date {
	t.Helper()
	d, err := time.Parse(dto.DateLayout, s)
	require.NoError(t, err)
	return &dto.Date{Time: d}
}

func mustClock(t *testing.T, s string) *schedule.Clock {
	t.Helper()
	c, err := schedule.ParseClock(s)
	require.NoError(t, err)
	return &c
}

func courseRequest(t *testing.T, title string, day int, from, to, startDate, endDate string) *dto.CourseRequest {
	t.Helper()
	req := &dto.CourseRequest{
		Title:     title,
		Category:  models.CategoryAI,
		Weekday:   &day,
		StartTime: mustClock(t, from),
		EndTime:   mustClock(t, to),
	}
	if startDate != "" {
		req.StartDate = mustDate(t, startDate)
		req.EndDate = mustDate(t, endDate)
	}
	return req
}

func newTestCourseService(courses *fakeCourses, enrollments *fakeEnrollments) CourseService {
	svc := NewCourseService(courses, enrollments, &fakeStorage{}, authz.NewAuthorizer(), time.UTC, zerolog.Nop())
	svc.(*courseServiceImpl).now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateCourse_InstructorConflictReturnsDetails(t *testing.T) {
	courses := newFakeCourses()
	svc := newTestCourseService(courses, newFakeEnrollments(courses, nil))
	ctx := context.Background()

	first, err := svc.CreateCourse(ctx, instructorActor,
		courseRequest(t, "Intro to Robotics", 0, "10:00", "12:00", "2024-03-01", "2024-06-30"))
	require.NoError(t, err)

	_, err = svc.CreateCourse(ctx, instructorActor,
		courseRequest(t, "Drones", 0, "11:00", "13:00", "2024-04-01", "2024-04-30"))
	require.True(t, errors.Is(err, apperrors.ErrScheduleConflict))

	custom, ok := apperrors.AsCustom(err)
	require.True(t, ok)
	assert.Equal(t, first.ID, custom.Details["conflictingCourseId"])
	assert.Equal(t, "Intro to Robotics", custom.Details["conflictingCourseTitle"])
	assert.Equal(t, "Monday", custom.Details["weekday"])
	assert.Equal(t, "10:00-12:00", custom.Details["timeRange"])
	assert.Equal(t, "2024-03-01 ~ 2024-06-30", custom.Details["dateRange"])
	assert.Contains(t, custom.Message, `"Intro to Robotics" on Monday 10:00-12:00`)
}

func TestCreateCourse_AllowsTouchingSlotsAndOtherInstructors(t *testing.T) {
	courses := newFakeCourses()
	svc := newTestCourseService(courses, newFakeEnrollments(courses, nil))
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Morning", 2, "10:00", "12:00", "", ""))
	require.NoError(t, err)

	_, err = svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Noon", 2, "12:00", "13:00", "", ""))
	assert.NoError(t, err)

	_, err = svc.CreateCourse(ctx, otherInstructor, courseRequest(t, "Same slot", 2, "10:00", "12:00", "", ""))
	assert.NoError(t, err)
}

func TestCreateCourse_EndedCoursesDoNotBlock(t *testing.T) {
	courses := newFakeCourses()
	svc := newTestCourseService(courses, newFakeEnrollments(courses, nil))
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, instructorActor,
		courseRequest(t, "Last term", 0, "10:00", "12:00", "2023-09-01", "2023-12-20"))
	require.NoError(t, err)

	_, err = svc.CreateCourse(ctx, instructorActor, courseRequest(t, "This term", 0, "10:00", "12:00", "", ""))
	assert.NoError(t, err)
}

func TestCreateCourse_InvalidBookingAndRole(t *testing.T) {
	courses := newFakeCourses()
	svc := newTestCourseService(courses, newFakeEnrollments(courses, nil))
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Backwards", 1, "12:00", "10:00", "", ""))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.CreateCourse(ctx, studentActor, courseRequest(t, "Nope", 1, "10:00", "12:00", "", ""))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestUpdateCourse_ExcludesItselfFromCheck(t *testing.T) {
	courses := newFakeCourses()
	svc := newTestCourseService(courses, newFakeEnrollments(courses, nil))
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Coding", 3, "10:00", "12:00", "", ""))
	require.NoError(t, err)
	_, err = svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Making", 3, "14:00", "16:00", "", ""))
	require.NoError(t, err)

	updated, err := svc.UpdateCourse(ctx, instructorActor, created.ID, courseRequest(t, "Coding", 3, "11:00", "13:00", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "11:00", updated.StartTime)

	_, err = svc.UpdateCourse(ctx, instructorActor, created.ID, courseRequest(t, "Coding", 3, "13:00", "15:00", "", ""))
	assert.True(t, errors.Is(err, apperrors.ErrScheduleConflict))

	_, err = svc.UpdateCourse(ctx, otherInstructor, created.ID, courseRequest(t, "Coding", 3, "08:00", "09:00", "", ""))
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.UpdateCourse(ctx, managerActor, created.ID, courseRequest(t, "Coding", 3, "08:00", "09:00", "", ""))
	assert.NoError(t, err)
}

func TestListAndGetCourse(t *testing.T) {
	courses := newFakeCourses()
	users := newFakeUsers()
	enrollments := newFakeEnrollments(courses, users)
	svc := newTestCourseService(courses, enrollments)
	ctx := context.Background()

	open, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Open", 0, "10:00", "11:00", "", ""))
	require.NoError(t, err)
	closed, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Closed", 1, "10:00", "11:00", "", ""))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCourse(ctx, instructorActor, closed.ID))

	list, err := svc.ListCourses(ctx, dto.CourseListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, open.ID, list.Courses[0].ID)
	assert.Equal(t, int64(1), list.Pagination.TotalItems)

	mine, err := svc.MyCourses(ctx, instructorActor)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, enrollments.Create(ctx, &models.Enrollment{StudentID: studentActor.UserID, CourseID: open.ID}))
	got, err := svc.GetCourse(ctx, open.ID, &studentActor)
	require.NoError(t, err)
	require.NotNil(t, got.IsEnrolled)
	assert.True(t, *got.IsEnrolled)
	assert.Equal(t, 1, got.Views)

	anon, err := svc.GetCourse(ctx, open.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, anon.IsEnrolled)
	assert.Equal(t, 2, anon.Views)
}

func TestCourseImage_ReplaceAndRemove(t *testing.T) {
	courses := newFakeCourses()
	storage := &fakeStorage{}
	svc := NewCourseService(courses, newFakeEnrollments(courses, nil), storage, authz.NewAuthorizer(), time.UTC, zerolog.Nop())
	svc.(*courseServiceImpl).now = func() time.Time { return fixedNow }
	ctx := context.Background()

	c, err := svc.CreateCourse(ctx, instructorActor, courseRequest(t, "Robotics", 0, "10:00", "12:00", "", ""))
	require.NoError(t, err)
	assert.Nil(t, c.ImageURL)

	_, err = svc.SetImage(ctx, instructorActor, c.ID, &multipart.FileHeader{Filename: "notes.pdf"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	_, err = svc.SetImage(ctx, instructorActor, c.ID, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	_, err = svc.SetImage(ctx, otherInstructor, c.ID, &multipart.FileHeader{Filename: "x.png"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	withImage, err := svc.SetImage(ctx, instructorActor, c.ID, &multipart.FileHeader{Filename: "Cover.PNG"})
	require.NoError(t, err)
	require.NotNil(t, withImage.ImageURL)
	assert.Equal(t, "/uploads/courses/cover.png", *withImage.ImageURL)

	_, err = svc.SetImage(ctx, managerActor, c.ID, &multipart.FileHeader{Filename: "new.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"courses/cover.png"}, storage.deleted)

	got, err := svc.GetCourse(ctx, c.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "/uploads/courses/new.jpg", *got.ImageURL)

	cleared, err := svc.RemoveImage(ctx, instructorActor, c.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ImageURL)
	assert.Equal(t, []string{"courses/cover.png", "courses/new.jpg"}, storage.deleted)
}
