package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/filestorage"
)

// ClassroomService serves the private room of a course: notices, weekly
// material and Q&A.
type ClassroomService interface {
	ListNotices(ctx context.Context, actor authz.Actor, courseID int64) ([]*models.CourseNotice, error)
	CreateNotice(ctx context.Context, actor authz.Actor, courseID int64, req *dto.CourseNoticeRequest) (*models.CourseNotice, error)
	UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.CourseNoticeRequest) (*models.CourseNotice, error)
	DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error

	ListWeekly(ctx context.Context, actor authz.Actor, courseID int64) ([]*models.WeeklyContent, error)
	CreateWeekly(ctx context.Context, actor authz.Actor, courseID int64, req *dto.WeeklyContentRequest, file *multipart.FileHeader) (*models.WeeklyContent, error)
	UpdateWeekly(ctx context.Context, actor authz.Actor, id int64, req *dto.WeeklyContentRequest, file *multipart.FileHeader) (*models.WeeklyContent, error)
	DeleteWeekly(ctx context.Context, actor authz.Actor, id int64) error

	ListQuestions(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.QuestionResponse, error)
	CreateQuestion(ctx context.Context, actor authz.Actor, courseID int64, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, actor authz.Actor, id int64) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, actor authz.Actor, id int64) error
	AnswerQuestion(ctx context.Context, actor authz.Actor, questionID int64, req *dto.AnswerRequest) (*dto.QuestionResponse, error)
	ToggleResolved(ctx context.Context, actor authz.Actor, questionID int64) (*dto.QuestionResponse, error)
}

type classroomServiceImpl struct {
	access    courseAccess
	notices   CourseNoticeStore
	weekly    WeeklyContentStore
	questions QuestionStore
	storage   filestorage.FileStorage
	logger    zerolog.Logger
}

// NewClassroomService creates a new ClassroomService
func NewClassroomService(
	courses CourseStore,
	enrollments EnrollmentStore,
	notices CourseNoticeStore,
	weekly WeeklyContentStore,
	questions QuestionStore,
	storage filestorage.FileStorage,
	authorizer *authz.Authorizer,
	logger zerolog.Logger,
) ClassroomService {
	return &classroomServiceImpl{
		access:    courseAccess{courses: courses, enrollments: enrollments, authorizer: authorizer},
		notices:   notices,
		weekly:    weekly,
		questions: questions,
		storage:   storage,
		logger:    logger,
	}
}

// Course notices

func (s *classroomServiceImpl) ListNotices(ctx context.Context, actor authz.Actor, courseID int64) ([]*models.CourseNotice, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, courseID); err != nil {
		return nil, err
	}
	return s.notices.ListByCourse(ctx, courseID)
}

func (s *classroomServiceImpl) CreateNotice(ctx context.Context, actor authz.Actor, courseID int64, req *dto.CourseNoticeRequest) (*models.CourseNotice, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, courseID); err != nil {
		return nil, err
	}
	n := &models.CourseNotice{
		CourseID: courseID,
		AuthorID: actor.UserID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		IsPinned: req.IsPinned,
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *classroomServiceImpl) UpdateNotice(ctx context.Context, actor authz.Actor, id int64, req *dto.CourseNoticeRequest) (*models.CourseNotice, error) {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, n.CourseID); err != nil {
		return nil, err
	}
	n.Title = strings.TrimSpace(req.Title)
	n.Content = req.Content
	n.IsPinned = req.IsPinned
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *classroomServiceImpl) DeleteNotice(ctx context.Context, actor authz.Actor, id int64) error {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, n.CourseID); err != nil {
		return err
	}
	return s.notices.Delete(ctx, id)
}

// Weekly content

func weeklyView(w *models.WeeklyContent) *models.WeeklyContent {
	out := *w
	out.FilePath = fileURL(w.FilePath)
	return &out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *classroomServiceImpl) ListWeekly(ctx context.Context, actor authz.Actor, courseID int64) ([]*models.WeeklyContent, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, courseID); err != nil {
		return nil, err
	}
	list, err := s.weekly.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.WeeklyContent, 0, len(list))
	for _, w := range list {
		out = append(out, weeklyView(w))
	}
	return out, nil
}

func (s *classroomServiceImpl) CreateWeekly(ctx context.Context, actor authz.Actor, courseID int64, req *dto.WeeklyContentRequest, file *multipart.FileHeader) (*models.WeeklyContent, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, courseID); err != nil {
		return nil, err
	}

	w := &models.WeeklyContent{
		CourseID:   courseID,
		WeekNumber: req.WeekNumber,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		VideoURL:   optionalString(req.VideoURL),
	}
	if file != nil {
		rel, err := s.storage.Save(file, "weekly")
		if err != nil {
			return nil, err
		}
		w.FilePath = &rel
	}

	if err := s.weekly.Create(ctx, w); err != nil {
		s.dropFile(w.FilePath)
		return nil, err
	}
	return weeklyView(w), nil
}

func (s *classroomServiceImpl) UpdateWeekly(ctx context.Context, actor authz.Actor, id int64, req *dto.WeeklyContentRequest, file *multipart.FileHeader) (*models.WeeklyContent, error) {
	w, err := s.weekly.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, w.CourseID); err != nil {
		return nil, err
	}

	w.WeekNumber = req.WeekNumber
	w.Title = strings.TrimSpace(req.Title)
	w.Content = req.Content
	w.VideoURL = optionalString(req.VideoURL)

	old := w.FilePath
	var uploaded *string
	if file != nil {
		rel, err := s.storage.Save(file, "weekly")
		if err != nil {
			return nil, err
		}
		uploaded = &rel
		w.FilePath = uploaded
	}

	if err := s.weekly.Update(ctx, w); err != nil {
		s.dropFile(uploaded)
		return nil, err
	}
	if uploaded != nil {
		s.dropFile(old)
	}
	return weeklyView(w), nil
}

func (s *classroomServiceImpl) DeleteWeekly(ctx context.Context, actor authz.Actor, id int64) error {
	w, err := s.weekly.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, w.CourseID); err != nil {
		return err
	}
	if err := s.weekly.Delete(ctx, id); err != nil {
		return err
	}
	s.dropFile(w.FilePath)
	return nil
}

func (s *classroomServiceImpl) dropFile(rel *string) {
	if rel == nil {
		return
	}
	if err := s.storage.Delete(*rel); err != nil {
		s.logger.Warn().Err(err).Str("path", *rel).Msg("Failed to delete stored file")
	}
}

// Q&A

func (s *classroomServiceImpl) ListQuestions(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.QuestionResponse, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, courseID); err != nil {
		return nil, err
	}
	list, err := s.questions.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuestionResponse, 0, len(list))
	for _, q := range list {
		out = append(out, dto.NewQuestionResponse(q))
	}
	return out, nil
}

func (s *classroomServiceImpl) CreateQuestion(ctx context.Context, actor authz.Actor, courseID int64, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, courseID); err != nil {
		return nil, err
	}
	q := &models.CourseQuestion{
		CourseID: courseID,
		AuthorID: actor.UserID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return s.thread(ctx, q.ID)
}

// loadQuestion fetches a question and checks room access to its course.
func (s *classroomServiceImpl) loadQuestion(ctx context.Context, actor authz.Actor, id int64) (*models.CourseQuestion, *models.Course, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.access.require(ctx, actor, authz.ActionViewCourseRoom, q.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return q, course, nil
}

// thread loads a question with its answers.
func (s *classroomServiceImpl) thread(ctx context.Context, id int64) (*dto.QuestionResponse, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Answers, err = s.questions.ListAnswers(ctx, id); err != nil {
		return nil, err
	}
	resp := dto.NewQuestionResponse(q)
	return &resp, nil
}

func (s *classroomServiceImpl) GetQuestion(ctx context.Context, actor authz.Actor, id int64) (*dto.QuestionResponse, error) {
	if _, _, err := s.loadQuestion(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.thread(ctx, id)
}

// DeleteQuestion is allowed for the author, the course instructor and managers.
func (s *classroomServiceImpl) DeleteQuestion(ctx context.Context, actor authz.Actor, id int64) error {
	q, course, err := s.loadQuestion(ctx, actor, id)
	if err != nil {
		return err
	}
	res := authz.Resource{OwnerID: q.AuthorID, CourseInstructorID: course.InstructorID}
	if err := s.access.authorizer.Require(actor, authz.ActionResolveQuestion, res); err != nil {
		return err
	}
	return s.questions.Delete(ctx, id)
}

// AnswerQuestion adds a reply. Replies by the course instructor are flagged.
func (s *classroomServiceImpl) AnswerQuestion(ctx context.Context, actor authz.Actor, questionID int64, req *dto.AnswerRequest) (*dto.QuestionResponse, error) {
	q, course, err := s.loadQuestion(ctx, actor, questionID)
	if err != nil {
		return nil, err
	}

	a := &models.QuestionAnswer{
		QuestionID:         q.ID,
		AuthorID:           actor.UserID,
		Content:            req.Content,
		IsInstructorAnswer: actor.UserID == course.InstructorID,
	}
	if err := s.questions.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	return s.thread(ctx, q.ID)
}

func (s *classroomServiceImpl) ToggleResolved(ctx context.Context, actor authz.Actor, questionID int64) (*dto.QuestionResponse, error) {
	q, course, err := s.loadQuestion(ctx, actor, questionID)
	if err != nil {
		return nil, err
	}
	res := authz.Resource{OwnerID: q.AuthorID, CourseInstructorID: course.InstructorID}
	if err := s.access.authorizer.Require(actor, authz.ActionResolveQuestion, res); err != nil {
		return nil, err
	}
	if err := s.questions.SetResolved(ctx, q.ID, !q.IsResolved); err != nil {
		return nil, err
	}
	return s.thread(ctx, q.ID)
}
