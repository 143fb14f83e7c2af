package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/calendar"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

const (
	upcomingLimit = 3
	pendingLimit  = 5
)

// EnrollmentService handles joining courses and the student timetable
type EnrollmentService interface {
	Enroll(ctx context.Context, actor authz.Actor, courseID int64) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, actor authz.Actor, courseID int64) error
	MyEnrollments(ctx context.Context, actor authz.Actor) ([]dto.EnrollmentResponse, error)
	UpdateProgress(ctx context.Context, actor authz.Actor, courseID int64, progress int) (*dto.EnrollmentResponse, error)
	Roster(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.RosterEntry, error)
	Calendar(ctx context.Context, actor authz.Actor, year, month int) (*dto.CalendarResponse, error)
	Dashboard(ctx context.Context, actor authz.Actor) (*dto.DashboardResponse, error)
	ExportICS(ctx context.Context, actor authz.Actor) (string, error)
}

type enrollmentServiceImpl struct {
	access      courseAccess
	courses     CourseStore
	enrollments EnrollmentStore
	pending     PendingAssignmentStore
	loc         *time.Location
	now         func() time.Time
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(courses CourseStore, enrollments EnrollmentStore, pending PendingAssignmentStore, authorizer *authz.Authorizer, loc *time.Location, logger zerolog.Logger) EnrollmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &enrollmentServiceImpl{
		access:      courseAccess{courses: courses, enrollments: enrollments, authorizer: authorizer},
		courses:     courses,
		enrollments: enrollments,
		pending:     pending,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *enrollmentServiceImpl) today() time.Time {
	return dayIn(s.now(), s.loc)
}

// Enroll joins a running course unless it collides with the student's
// current timetable.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, actor authz.Actor, courseID int64) (*dto.EnrollmentResponse, error) {
	if err := s.access.authorizer.Require(actor, authz.ActionEnroll, authz.Resource{}); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	if !course.IsOpen(today) {
		return nil, apperrors.ErrCourseInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperrors.ErrAlreadyEnrolled
	}

	if course.MaxStudents > 0 {
		roster, err := s.enrollments.ListByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if len(roster) >= course.MaxStudents {
			return nil, apperrors.NewConflictError("course is full")
		}
	}

	current, err := s.enrollments.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	existing := schedule.Without(activeBookings(current, today), courseID)
	if hit, ok := schedule.FirstConflict(course.Booking(), existing); ok {
		s.logger.Info().Int64("studentID", actor.UserID).Int64("courseID", courseID).
			Int64("conflictingCourseID", hit.ID).Msg("Enrollment schedule conflict")
		return nil, scheduleConflictError("You are already enrolled in", hit)
	}

	e := &models.Enrollment{StudentID: actor.UserID, CourseID: courseID}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Course = course

	s.logger.Info().Int64("studentID", actor.UserID).Int64("courseID", courseID).Msg("Student enrolled")
	resp := dto.NewEnrollmentResponse(e)
	return &resp, nil
}

// activeBookings keeps enrollments that still occupy the student's week.
func activeBookings(list []*models.Enrollment, today time.Time) []schedule.Booking {
	out := make([]schedule.Booking, 0, len(list))
	for _, e := range list {
		if e.IsCompleted || e.Course == nil || !e.Course.IsOpen(today) {
			continue
		}
		out = append(out, e.Course.Booking())
	}
	return out
}

func (s *enrollmentServiceImpl) Unenroll(ctx context.Context, actor authz.Actor, courseID int64) error {
	if err := s.enrollments.Delete(ctx, actor.UserID, courseID); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", actor.UserID).Int64("courseID", courseID).Msg("Student unenrolled")
	return nil
}

func (s *enrollmentServiceImpl) MyEnrollments(ctx context.Context, actor authz.Actor) ([]dto.EnrollmentResponse, error) {
	list, err := s.enrollments.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EnrollmentResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.NewEnrollmentResponse(e))
	}
	return out, nil
}

// UpdateProgress stores progress; 100 marks the course completed
func (s *enrollmentServiceImpl) UpdateProgress(ctx context.Context, actor authz.Actor, courseID int64, progress int) (*dto.EnrollmentResponse, error) {
	if progress < 0 || progress > 100 {
		return nil, apperrors.NewValidationError("progress must be between 0 and 100")
	}
	if _, err := s.enrollments.Get(ctx, actor.UserID, courseID); err != nil {
		return nil, err
	}

	completed := progress == 100
	if err := s.enrollments.UpdateProgress(ctx, actor.UserID, courseID, progress, completed); err != nil {
		return nil, err
	}

	e, err := s.enrollments.Get(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEnrollmentResponse(e)
	return &resp, nil
}

// Roster lists the students of a course for its instructor or a manager
func (s *enrollmentServiceImpl) Roster(ctx context.Context, actor authz.Actor, courseID int64) ([]dto.RosterEntry, error) {
	if _, err := s.access.require(ctx, actor, authz.ActionManageCourse, courseID); err != nil {
		return nil, err
	}

	list, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RosterEntry, 0, len(list))
	for _, e := range list {
		entry := dto.RosterEntry{
			StudentID:      e.StudentID,
			Progress:       e.Progress,
			IsCompleted:    e.IsCompleted,
			LastAccessedAt: e.LastAccessedAt,
			EnrolledAt:     e.EnrolledAt,
		}
		if e.Student != nil {
			entry.Name = e.Student.FullName()
			entry.Email = e.Student.Email
			entry.Phone = e.Student.Phone
		}
		out = append(out, entry)
	}
	return out, nil
}

func classSlot(c *models.Course) dto.ClassSlot {
	return dto.ClassSlot{
		CourseID:  c.ID,
		Title:     c.Title,
		Category:  string(c.Category),
		StartTime: c.StartTime.String(),
		EndTime:   c.EndTime.String(),
	}
}

// timetable returns the courses the student still attends, in weekly order.
func (s *enrollmentServiceImpl) timetable(ctx context.Context, studentID int64) ([]*models.Course, error) {
	list, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courses := make([]*models.Course, 0, len(list))
	for _, e := range list {
		if e.IsCompleted || e.Course == nil || !e.Course.IsActive {
			continue
		}
		courses = append(courses, e.Course)
	}
	return courses, nil
}

// Calendar maps each day of the month to the classes held that day
func (s *enrollmentServiceImpl) Calendar(ctx context.Context, actor authz.Actor, year, month int) (*dto.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.NewValidationError("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return nil, apperrors.NewValidationError("year is out of range")
	}

	courses, err := s.timetable(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CalendarResponse{Year: year, Month: month, Days: make(map[int][]dto.ClassSlot)}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		for _, c := range courses {
			if schedule.OccursOn(c.Booking(), day) {
				resp.Days[day.Day()] = append(resp.Days[day.Day()], classSlot(c))
			}
		}
	}
	return resp, nil
}

// Dashboard returns the weekly grid, the next few meetings and the
// assignments still waiting for a submission
func (s *enrollmentServiceImpl) Dashboard(ctx context.Context, actor authz.Actor) (*dto.DashboardResponse, error) {
	list, err := s.enrollments.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := dayIn(now, s.loc)
	resp := &dto.DashboardResponse{
		Weekly:             make(map[string][]dto.ClassSlot),
		Upcoming:           make([]dto.UpcomingClass, 0, upcomingLimit),
		PendingAssignments: make([]dto.PendingAssignment, 0),
		Courses:            make([]dto.EnrollmentResponse, 0, len(list)),
	}
	ongoing := make(map[int64]*models.Course)

	type upcoming struct {
		date   time.Time
		course *models.Course
	}
	var next []upcoming

	for _, e := range list {
		resp.Courses = append(resp.Courses, dto.NewEnrollmentResponse(e))
		if e.IsCompleted || e.Course == nil || !e.Course.IsOpen(today) {
			continue
		}
		c := e.Course
		ongoing[c.ID] = c
		resp.Weekly[c.Weekday.String()] = append(resp.Weekly[c.Weekday.String()], classSlot(c))
		if date, ok := schedule.NextMeeting(c.Booking(), now); ok {
			next = append(next, upcoming{date: date, course: c})
		}
	}

	sort.SliceStable(next, func(i, j int) bool {
		if !next[i].date.Equal(next[j].date) {
			return next[i].date.Before(next[j].date)
		}
		return next[i].course.StartTime < next[j].course.StartTime
	})
	if len(next) > upcomingLimit {
		next = next[:upcomingLimit]
	}
	for _, u := range next {
		resp.Upcoming = append(resp.Upcoming, dto.UpcomingClass{
			ClassSlot: classSlot(u.course),
			Date:      u.date.Format(dto.DateLayout),
			DaysUntil: schedule.DaysUntil(today, u.date),
		})
	}

	if resp.PendingAssignments, err = s.pendingAssignments(ctx, actor.UserID, ongoing, now); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *enrollmentServiceImpl) pendingAssignments(ctx context.Context, studentID int64, ongoing map[int64]*models.Course, now time.Time) ([]dto.PendingAssignment, error) {
	out := make([]dto.PendingAssignment, 0)
	if len(ongoing) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(ongoing))
	for id := range ongoing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list, err := s.pending.ListPending(ctx, studentID, ids, now, pendingLimit)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		if a.DueDate == nil {
			continue
		}
		out = append(out, dto.PendingAssignment{
			AssignmentID: a.ID,
			CourseID:     a.CourseID,
			CourseTitle:  ongoing[a.CourseID].Title,
			Title:        a.Title,
			DueDate:      *a.DueDate,
		})
	}
	return out, nil
}

// ExportICS renders the student's timetable as an iCalendar feed
func (s *enrollmentServiceImpl) ExportICS(ctx context.Context, actor authz.Actor) (string, error) {
	courses, err := s.timetable(ctx, actor.UserID)
	if err != nil {
		return "", err
	}

	entries := make([]calendar.Entry, 0, len(courses))
	for _, c := range courses {
		desc := ""
		if c.Instructor != nil {
			desc = "Instructor: " + c.Instructor.FullName()
		}
		entries = append(entries, calendar.Entry{
			UID:         fmt.Sprintf("course-%d-student-%d@edulearn", c.ID, actor.UserID),
			Summary:     c.Title,
			Description: desc,
			Booking:     c.Booking(),
		})
	}
	return calendar.Build("EduLearn timetable", entries, s.now(), s.loc), nil
}
