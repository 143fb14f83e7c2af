package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/repositories"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/filestorage"
	"github.com/yigit/edulearn/internal/pkg/helpers"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

// CourseService manages the course catalog
type CourseService interface {
	ListCourses(ctx context.Context, query dto.CourseListQuery) (*dto.CourseListResponse, error)
	GetCourse(ctx context.Context, id int64, viewer *authz.Actor) (*dto.CourseResponse, error)
	CreateCourse(ctx context.Context, actor authz.Actor, req *dto.CourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, actor authz.Actor, id int64, req *dto.CourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, actor authz.Actor, id int64) error
	MyCourses(ctx context.Context, actor authz.Actor) ([]dto.CourseResponse, error)
	SetImage(ctx context.Context, actor authz.Actor, id int64, file *multipart.FileHeader) (*dto.CourseResponse, error)
	RemoveImage(ctx context.Context, actor authz.Actor, id int64) (*dto.CourseResponse, error)
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type courseServiceImpl struct {
	access      courseAccess
	courses     CourseStore
	enrollments EnrollmentStore
	storage     filestorage.FileStorage
	loc         *time.Location
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService. loc decides which calendar
// day "today" is when filtering running courses.
func NewCourseService(courses CourseStore, enrollments EnrollmentStore, storage filestorage.FileStorage, authorizer *authz.Authorizer, loc *time.Location, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		access:      courseAccess{courses: courses, enrollments: enrollments, authorizer: authorizer},
		courses:     courses,
		enrollments: enrollments,
		storage:     storage,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *courseServiceImpl) today() time.Time {
	return dayIn(s.now(), s.loc)
}

// ListCourses returns one page of the courses currently open
func (s *courseServiceImpl) ListCourses(ctx context.Context, query dto.CourseListQuery) (*dto.CourseListResponse, error) {
	if query.Category != "" && !query.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown course category")
	}

	today := s.today()
	offset, limit := helpers.CalculateOffsetLimit(query.Page, query.Size)
	courses, total, err := s.courses.List(ctx, repositories.CourseFilter{
		Category:     query.Category,
		InstructorID: query.InstructorID,
		OpenOn:       &today,
		Offset:       offset,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CourseListResponse{
		Courses:    dto.NewCourseResponses(courses),
		Pagination: helpers.NewPaginationInfo(total, query.Page, query.Size),
	}, nil
}

// GetCourse returns a course and counts the view. viewer may be nil.
func (s *courseServiceImpl) GetCourse(ctx context.Context, id int64, viewer *authz.Actor) (*dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.courses.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("courseID", id).Msg("Failed to increment course views")
	} else {
		course.Views++
	}

	resp := dto.NewCourseResponse(course)
	if viewer != nil && viewer.Role == models.RoleStudent {
		enrolled, err := s.enrollments.Exists(ctx, viewer.UserID, id)
		if err != nil {
			return nil, err
		}
		resp.IsEnrolled = &enrolled
	}
	return &resp, nil
}

// CreateCourse opens a course for the actor after checking the actor's timetable
func (s *courseServiceImpl) CreateCourse(ctx context.Context, actor authz.Actor, req *dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := s.access.authorizer.Require(actor, authz.ActionCreateCourse, authz.Resource{}); err != nil {
		return nil, err
	}

	candidate := req.Booking()
	if err := validateBooking(candidate); err != nil {
		return nil, err
	}
	if err := s.checkInstructorSchedule(ctx, actor.UserID, 0, candidate); err != nil {
		return nil, err
	}

	course := &models.Course{InstructorID: actor.UserID, IsActive: true}
	req.ToModel(course)
	course.Title = strings.TrimSpace(course.Title)
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Int64("instructorID", actor.UserID).Msg("Course created")
	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// UpdateCourse replaces a course's details. The course's own slot is ignored
// when checking for collisions.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, actor authz.Actor, id int64, req *dto.CourseRequest) (*dto.CourseResponse, error) {
	course, err := s.access.require(ctx, actor, authz.ActionManageCourse, id)
	if err != nil {
		return nil, err
	}

	candidate := req.Booking()
	candidate.ID = id
	if err := validateBooking(candidate); err != nil {
		return nil, err
	}
	if err := s.checkInstructorSchedule(ctx, course.InstructorID, id, candidate); err != nil {
		return nil, err
	}

	req.ToModel(course)
	course.Title = strings.TrimSpace(course.Title)
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// DeleteCourse deactivates a course; enrollments and history are kept
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, id); err != nil {
		return err
	}
	if err := s.courses.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("courseID", id).Int64("userID", actor.UserID).Msg("Course deactivated")
	return nil
}

// MyCourses lists every course the actor teaches, closed ones included
func (s *courseServiceImpl) MyCourses(ctx context.Context, actor authz.Actor) ([]dto.CourseResponse, error) {
	courses, err := s.courses.ListByInstructor(ctx, actor.UserID, nil)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponses(courses), nil
}

// SetImage replaces the course thumbnail
func (s *courseServiceImpl) SetImage(ctx context.Context, actor authz.Actor, id int64, file *multipart.FileHeader) (*dto.CourseResponse, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("an image file is required")
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return nil, apperrors.NewValidationError("image must be a jpg, png, gif or webp file")
	}

	course, err := s.access.require(ctx, actor, authz.ActionManageCourse, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.storage.Save(file, "courses")
	if err != nil {
		return nil, err
	}
	if err := s.courses.SetImage(ctx, id, &rel); err != nil {
		s.deleteImage(&rel)
		return nil, err
	}
	s.deleteImage(course.ImagePath)
	course.ImagePath = &rel

	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

// RemoveImage clears the course thumbnail
func (s *courseServiceImpl) RemoveImage(ctx context.Context, actor authz.Actor, id int64) (*dto.CourseResponse, error) {
	course, err := s.access.require(ctx, actor, authz.ActionManageCourse, id)
	if err != nil {
		return nil, err
	}
	if course.ImagePath != nil {
		if err := s.courses.SetImage(ctx, id, nil); err != nil {
			return nil, err
		}
		s.deleteImage(course.ImagePath)
		course.ImagePath = nil
	}

	resp := dto.NewCourseResponse(course)
	return &resp, nil
}

func (s *courseServiceImpl) deleteImage(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	if err := s.storage.Delete(*rel); err != nil {
		s.logger.Warn().Err(err).Str("path", *rel).Msg("Failed to delete course image")
	}
}

func (s *courseServiceImpl) checkInstructorSchedule(ctx context.Context, instructorID, excludeID int64, candidate schedule.Booking) error {
	today := s.today()
	running, err := s.courses.ListByInstructor(ctx, instructorID, &today)
	if err != nil {
		return err
	}

	existing := make([]schedule.Booking, 0, len(running))
	for _, c := range running {
		existing = append(existing, c.Booking())
	}
	if excludeID != 0 {
		existing = schedule.Without(existing, excludeID)
	}

	if hit, ok := schedule.FirstConflict(candidate, existing); ok {
		s.logger.Info().Int64("instructorID", instructorID).Int64("conflictingCourseID", hit.ID).Msg("Course schedule conflict")
		return scheduleConflictError("The instructor already teaches", hit)
	}
	return nil
}

func validateBooking(b schedule.Booking) error {
	if err := schedule.Validate(b); err != nil {
		return apperrors.NewValidationError(strings.TrimPrefix(err.Error(), schedule.ErrInvalidBooking.Error()+": "))
	}
	return nil
}

// scheduleConflictError builds the 409 payload naming the course collided
// with. The details keys follow dto.ScheduleConflictDetails.
func scheduleConflictError(prefix string, hit schedule.Booking) error {
	return apperrors.NewScheduleConflictError(
		fmt.Sprintf("%s %s", prefix, schedule.Describe(hit)),
		map[string]interface{}{
			"conflictingCourseId":    hit.ID,
			"conflictingCourseTitle": hit.Title,
			"weekday":                hit.Weekday.String(),
			"timeRange":              schedule.TimeRange(hit),
			"dateRange":              schedule.DateRange(hit),
		},
	)
}
