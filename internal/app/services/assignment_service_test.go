package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

type assignmentFixture struct {
	courses     *fakeCourses
	users       *fakeUsers
	enrollments *fakeEnrollments
	storage     *fakeStorage
	svc         AssignmentService
	course      *models.Course
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	courses := newFakeCourses()
	users := newFakeUsers()
	assignments := newFakeAssignments()
	f := &assignmentFixture{
		courses:     courses,
		users:       users,
		enrollments: newFakeEnrollments(courses, users),
		storage:     &fakeStorage{},
	}
	f.svc = NewAssignmentService(courses, f.enrollments, assignments,
		&fakeSubmissions{assignments: assignments}, f.storage, authz.NewAuthorizer(), zerolog.Nop())

	f.course = &models.Course{
		Title:        "Robotics",
		InstructorID: instructorActor.UserID,
		Weekday:      schedule.Monday,
		StartTime:    schedule.NewClock(10, 0),
		EndTime:      schedule.NewClock(12, 0),
		IsActive:     true,
	}
	require.NoError(t, courses.Create(context.Background(), f.course))
	return f
}

// enrollStudent adds a named student to the fixture course and returns the actor.
func (f *assignmentFixture) enrollStudent(t *testing.T, first string) authz.Actor {
	t.Helper()
	u := f.users.add(&models.User{FirstName: first, LastName: "Student", Email: first + "@example.com", RoleType: models.RoleStudent})
	require.NoError(t, f.enrollments.Create(context.Background(), &models.Enrollment{StudentID: u.ID, CourseID: f.course.ID}))
	return authz.Actor{UserID: u.ID, Role: models.RoleStudent}
}

func TestAssignment_CreateWithAttachment(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID,
		&dto.AssignmentRequest{Title: "Build a robot", DueDate: "2024-05-01T23:59:00+09:00"},
		&multipart.FileHeader{Filename: "Brief.PDF"})
	require.NoError(t, err)

	assert.Equal(t, 100, a.MaxScore)
	require.NotNil(t, a.DueDate)
	require.NotNil(t, a.AttachmentURL)
	assert.Equal(t, "/uploads/assignments/brief.pdf", *a.AttachmentURL)

	_, err = f.svc.CreateAssignment(ctx, otherInstructor, f.course.ID, &dto.AssignmentRequest{Title: "x"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "x", DueDate: "tomorrow"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestAssignment_ReplaceAttachmentDeletesOldFile(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "v1"},
		&multipart.FileHeader{Filename: "old.txt"})
	require.NoError(t, err)

	_, err = f.svc.UpdateAssignment(ctx, instructorActor, a.ID, &dto.AssignmentRequest{Title: "v2"},
		&multipart.FileHeader{Filename: "new.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"assignments/old.txt"}, f.storage.deleted)
}

func TestSubmission_GradeAndResubmitClearsGrade(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	student := f.enrollStudent(t, "ada")

	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "Essay", MaxScore: 20}, nil)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{Content: "  "}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	sub, err := f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{Content: "first draft"}, nil)
	require.NoError(t, err)

	tooHigh := 21
	_, err = f.svc.Grade(ctx, instructorActor, sub.ID, &dto.GradeRequest{Score: &tooHigh})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	score := 18
	graded, err := f.svc.Grade(ctx, instructorActor, sub.ID, &dto.GradeRequest{Score: &score, Feedback: "good"})
	require.NoError(t, err)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 18, *graded.Score)

	_, err = f.svc.Grade(ctx, student, sub.ID, &dto.GradeRequest{Score: &score})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	resubmitted, err := f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{Content: "second draft"}, nil)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, resubmitted.ID)
	assert.Nil(t, resubmitted.Score)

	mine, err := f.svc.MySubmission(ctx, student, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", mine.Content)
	assert.Nil(t, mine.Score)
}

func TestSubmission_ResubmitWithFileDeletesPreviousFile(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	student := f.enrollStudent(t, "ada")

	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "Report"}, nil)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{}, &multipart.FileHeader{Filename: "v1.pdf"})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{Content: "notes only"}, nil)
	require.NoError(t, err)
	assert.Empty(t, f.storage.deleted)

	sub, err := f.svc.Submit(ctx, student, a.ID, &dto.SubmissionRequest{}, &multipart.FileHeader{Filename: "v2.pdf"})
	require.NoError(t, err)
	require.NotNil(t, sub.FileURL)
	assert.Equal(t, "/uploads/submissions/v2.pdf", *sub.FileURL)
	assert.Equal(t, []string{"submissions/v1.pdf"}, f.storage.deleted)
}

func TestSubmission_RequiresEnrollment(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "Quiz"}, nil)
	require.NoError(t, err)

	outsider := authz.Actor{UserID: 77, Role: models.RoleStudent}
	_, err = f.svc.Submit(ctx, outsider, a.ID, &dto.SubmissionRequest{Content: "hi"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = f.svc.ListAssignments(ctx, outsider, f.course.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestGradebook(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := context.Background()
	ada := f.enrollStudent(t, "ada")
	f.enrollStudent(t, "bob")

	a, err := f.svc.CreateAssignment(ctx, instructorActor, f.course.ID, &dto.AssignmentRequest{Title: "Essay", MaxScore: 10}, nil)
	require.NoError(t, err)
	sub, err := f.svc.Submit(ctx, ada, a.ID, &dto.SubmissionRequest{Content: "done"}, nil)
	require.NoError(t, err)
	score := 9
	_, err = f.svc.Grade(ctx, instructorActor, sub.ID, &dto.GradeRequest{Score: &score})
	require.NoError(t, err)

	data, name, err := f.svc.Gradebook(ctx, instructorActor, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, "gradebook-course-1.xlsx", name)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Gradebook")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ada Student", rows[2][0])
	assert.Equal(t, "9", rows[2][2])
	assert.Equal(t, "-", rows[3][2])

	_, _, err = f.svc.Gradebook(ctx, ada, f.course.ID)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestParseDueDate(t *testing.T) {
	d, err := parseDueDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDueDate("2024-05-01T14:59:00Z")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 5, 1, 14, 59, 0, 0, time.UTC)))
}
