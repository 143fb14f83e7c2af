package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/export"
	"github.com/yigit/edulearn/internal/pkg/filestorage"
)

const (
	defaultMaxScore = 100
	// UploadsURLPrefix is where stored files are served from.
	UploadsURLPrefix = dto.UploadsURLPrefix
)

// AssignmentService manages coursework, submissions and grading
type AssignmentService interface {
	ListAssignments(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, actor authz.Actor, id int64) (*dto.AssignmentResponse, error)
	CreateAssignment(ctx context.Context, actor authz.Actor, courseID int64, req *dto.AssignmentRequest, file *multipart.FileHeader) (*dto.AssignmentResponse, error)
	UpdateAssignment(ctx context.Context, actor authz.Actor, id int64, req *dto.AssignmentRequest, file *multipart.FileHeader) (*dto.AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, actor authz.Actor, id int64) error
	Submit(ctx context.Context, actor authz.Actor, assignmentID int64, req *dto.SubmissionRequest, file *multipart.FileHeader) (*dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, actor authz.Actor, assignmentID int64) ([]dto.SubmissionResponse, error)
	MySubmission(ctx context.Context, actor authz.Actor, assignmentID int64) (*dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor authz.Actor, submissionID int64, req *dto.GradeRequest) (*dto.SubmissionResponse, error)
	Gradebook(ctx context.Context, actor authz.Actor, courseID int64) ([]byte, string, error)
}

type assignmentServiceImpl struct {
	access      courseAccess
	assignments AssignmentStore
	submissions SubmissionStore
	enrollments EnrollmentStore
	storage     filestorage.FileStorage
	logger      zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	courses CourseStore,
	enrollments EnrollmentStore,
	assignments AssignmentStore,
	submissions SubmissionStore,
	storage filestorage.FileStorage,
	authorizer *authz.Authorizer,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentServiceImpl{
		access:      courseAccess{courses: courses, enrollments: enrollments, authorizer: authorizer},
		assignments: assignments,
		submissions: submissions,
		enrollments: enrollments,
		storage:     storage,
		logger:      logger,
	}
}

func fileURL(rel *string) *string {
	return dto.FileURL(rel)
}

func assignmentResponse(a *models.Assignment) dto.AssignmentResponse {
	resp := dto.NewAssignmentResponse(a)
	resp.AttachmentURL = fileURL(a.AttachmentPath)
	return resp
}

func submissionResponse(s *models.Submission) dto.SubmissionResponse {
	resp := dto.NewSubmissionResponse(s)
	resp.FileURL = fileURL(s.FilePath)
	return resp
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.NewValidationError("dueDate must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// saveUpload stores file under dir. It returns nil when there is no file.
func (s *assignmentServiceImpl) saveUpload(file *multipart.FileHeader, dir string) (*string, error) {
	if file == nil {
		return nil, nil
	}
	rel, err := s.storage.Save(file, dir)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *assignmentServiceImpl) removeUpload(rel *string) {
	if rel == nil {
		return
	}
	if err := s.storage.Delete(*rel); err != nil {
		s.logger.Warn().Err(err).Str("path", *rel).Msg("Failed to delete stored file")
	}
}

// loadAssignment fetches an assignment and checks action against its course.
func (s *assignmentServiceImpl) loadAssignment(ctx context.Context, actor authz.Actor, action authz.Action, id int64) (*models.Assignment, *models.Course, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.access.require(ctx, actor, action, a.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return a, course, nil
}

func (s *assignmentServiceImpl) ListAssignments(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.AssignmentResponse, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, courseID); err != nil {
		return nil, err
	}
	list, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentResponse(a))
	}
	return out, nil
}

func (s *assignmentServiceImpl) GetAssignment(ctx context.Context, actor authz.Actor, id int64) (*dto.AssignmentResponse, error) {
	a, _, err := s.loadAssignment(ctx, actor, authz.ActionViewCourseRoom, id)
	if err != nil {
		return nil, err
	}
	resp := assignmentResponse(a)
	return &resp, nil
}

func (s *assignmentServiceImpl) CreateAssignment(ctx context.Context, actor authz.Actor, courseID int64, req *dto.AssignmentRequest, file *multipart.FileHeader) (*dto.AssignmentResponse, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, courseID); err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	a := &models.Assignment{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     due,
		MaxScore:    req.MaxScore,
		CreatedBy:   actor.UserID,
	}
	if a.MaxScore == 0 {
		a.MaxScore = defaultMaxScore
	}
	if a.AttachmentPath, err = s.saveUpload(file, "assignments"); err != nil {
		return nil, err
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		s.removeUpload(a.AttachmentPath)
		return nil, err
	}

	s.logger.Info().Int64("assignmentID", a.ID).Int64("courseID", courseID).Msg("Assignment created")
	resp := assignmentResponse(a)
	return &resp, nil
}

// UpdateAssignment rewrites an assignment. A new file replaces the old attachment.
func (s *assignmentServiceImpl) UpdateAssignment(ctx context.Context, actor authz.Actor, id int64, req *dto.AssignmentRequest, file *multipart.FileHeader) (*dto.AssignmentResponse, error) {
	a, _, err := s.loadAssignment(ctx, actor, authz.ActionManageCourse, id)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	a.Title = strings.TrimSpace(req.Title)
	a.Description = req.Description
	a.DueDate = due
	if req.MaxScore > 0 {
		a.MaxScore = req.MaxScore
	}

	old := a.AttachmentPath
	newPath, err := s.saveUpload(file, "assignments")
	if err != nil {
		return nil, err
	}
	if newPath != nil {
		a.AttachmentPath = newPath
	}

	if err := s.assignments.Update(ctx, a); err != nil {
		s.removeUpload(newPath)
		return nil, err
	}
	if newPath != nil {
		s.removeUpload(old)
	}

	resp := assignmentResponse(a)
	return &resp, nil
}

func (s *assignmentServiceImpl) DeleteAssignment(ctx context.Context, actor authz.Actor, id int64) error {
	a, _, err := s.loadAssignment(ctx, actor, authz.ActionManageCourse, id)
	if err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}
	s.removeUpload(a.AttachmentPath)
	return nil
}

// Submit stores or replaces the actor's submission. Replacing clears the grade.
func (s *assignmentServiceImpl) Submit(ctx context.Context, actor authz.Actor, assignmentID int64, req *dto.SubmissionRequest, file *multipart.FileHeader) (*dto.SubmissionResponse, error) {
	a, _, err := s.loadAssignment(ctx, actor, authz.ActionSubmit, assignmentID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && file == nil {
		return nil, apperrors.NewValidationError("a submission needs content or a file")
	}

	sub := &models.Submission{AssignmentID: a.ID, StudentID: actor.UserID, Content: content}
	if sub.FilePath, err = s.saveUpload(file, "submissions"); err != nil {
		return nil, err
	}
	uploaded := sub.FilePath

	previous, err := s.submissions.Upsert(ctx, sub)
	if err != nil {
		s.removeUpload(uploaded)
		return nil, err
	}
	if uploaded != nil && previous != nil && *previous != *uploaded {
		s.removeUpload(previous)
	}

	s.logger.Info().Int64("assignmentID", a.ID).Int64("studentID", actor.UserID).Msg("Submission saved")
	resp := submissionResponse(sub)
	return &resp, nil
}

func (s *assignmentServiceImpl) ListSubmissions(ctx context.Context, actor authz.Actor, assignmentID int64) ([]dto.SubmissionResponse, error) {
	if _, _, err := s.loadAssignment(ctx, actor, authz.ActionManageCourse, assignmentID); err != nil {
		return nil, err
	}
	list, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubmissionResponse, 0, len(list))
	for _, sub := range list {
		out = append(out, submissionResponse(sub))
	}
	return out, nil
}

func (s *assignmentServiceImpl) MySubmission(ctx context.Context, actor authz.Actor, assignmentID int64) (*dto.SubmissionResponse, error) {
	if _, _, err := s.loadAssignment(ctx, actor, authz.ActionViewCourseRoom, assignmentID); err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := submissionResponse(sub)
	return &resp, nil
}

// Grade scores a submission between zero and the assignment's max score
func (s *assignmentServiceImpl) Grade(ctx context.Context, actor authz.Actor, submissionID int64, req *dto.GradeRequest) (*dto.SubmissionResponse, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	a, _, err := s.loadAssignment(ctx, actor, authz.ActionManageCourse, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	if req.Score == nil || *req.Score < 0 || *req.Score > a.MaxScore {
		return nil, apperrors.NewValidationError("score must be between 0 and the assignment's max score")
	}
	if err := s.submissions.Grade(ctx, submissionID, *req.Score, req.Feedback); err != nil {
		return nil, err
	}

	graded, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	resp := submissionResponse(graded)
	return &resp, nil
}

// Gradebook returns the course's xlsx gradebook and a file name for it
func (s *assignmentServiceImpl) Gradebook(ctx context.Context, actor authz.Actor, courseID int64) ([]byte, string, error) {
	course, err := s.access.require(ctx, actor, authz.ActionManageCourse, courseID)
	if err != nil {
		return nil, "", err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}
	subs, err := s.submissions.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	columns := make([]export.GradeColumn, 0, len(assignments))
	for _, a := range assignments {
		columns = append(columns, export.GradeColumn{ID: a.ID, Title: a.Title, MaxScore: a.MaxScore})
	}

	byStudent := make(map[int64]map[int64]export.GradeCell)
	for _, sub := range subs {
		if byStudent[sub.StudentID] == nil {
			byStudent[sub.StudentID] = make(map[int64]export.GradeCell)
		}
		byStudent[sub.StudentID][sub.AssignmentID] = export.GradeCell{Submitted: true, Score: sub.Score}
	}

	rows := make([]export.GradeRow, 0, len(roster))
	for _, e := range roster {
		row := export.GradeRow{Results: byStudent[e.StudentID]}
		if e.Student != nil {
			row.Name = e.Student.FullName()
			row.Email = e.Student.Email
		}
		rows = append(rows, row)
	}

	data, err := export.Gradebook(course.Title, columns, rows)
	if err != nil {
		return nil, "", err
	}
	return data, gradebookFileName(course), nil
}

func gradebookFileName(c *models.Course) string {
	return fmt.Sprintf("gradebook-course-%d.xlsx", c.ID)
}
