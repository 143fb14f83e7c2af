package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

// CourseRequest creates or replaces a course
type CourseRequest struct {
	Title       string                `json:"title" binding:"required,max=200"`
	Description string                `json:"description"`
	Category    models.CourseCategory `json:"category" binding:"required,oneof=DIGITAL AI MAKING COMPUTING GENERAL" enums:"DIGITAL,AI,MAKING,COMPUTING,GENERAL"`
	Weekday     *int                  `json:"weekday" binding:"required,min=0,max=6" example:"0"`
	StartTime   *schedule.Clock       `json:"startTime" binding:"required" swaggertype:"string" example:"10:00"`
	EndTime     *schedule.Clock       `json:"endTime" binding:"required" swaggertype:"string" example:"12:00"`
	StartDate   *Date                 `json:"startDate,omitempty" swaggertype:"string" example:"2024-03-01"`
	EndDate     *Date                 `json:"endDate,omitempty" swaggertype:"string" example:"2024-06-30"`
	MaxStudents int                   `json:"maxStudents" binding:"min=0"`
}

// ToModel copies the request onto a course model
func (r *CourseRequest) ToModel(c *models.Course) {
	c.Title = r.Title
	c.Description = r.Description
	c.Category = r.Category
	if r.Weekday != nil {
		c.Weekday = schedule.Weekday(*r.Weekday)
	}
	if r.StartTime != nil {
		c.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		c.EndTime = *r.EndTime
	}
	c.StartDate = r.StartDate.TimePtr()
	c.EndDate = r.EndDate.TimePtr()
	c.MaxStudents = r.MaxStudents
}

// Booking returns the requested slot for validation. Missing fields stay nil.
func (r *CourseRequest) Booking() schedule.Booking {
	b := schedule.Booking{
		Title:     r.Title,
		Weekday:   -1,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		StartDate: r.StartDate.TimePtr(),
		EndDate:   r.EndDate.TimePtr(),
	}
	if r.Weekday != nil {
		b.Weekday = schedule.Weekday(*r.Weekday)
	}
	return b
}

// CourseListQuery filters the public catalog
type CourseListQuery struct {
	Category     models.CourseCategory `form:"category"`
	InstructorID int64                 `form:"instructorId"`
	Page         int                   `form:"page"`
	Size         int                   `form:"size"`
}

// CourseResponse is the catalog view of a course
type CourseResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Weekday     int          `json:"weekday"`
	WeekdayName string       `json:"weekdayName"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	StartDate   *Date        `json:"startDate,omitempty" swaggertype:"string"`
	EndDate     *Date        `json:"endDate,omitempty" swaggertype:"string"`
	Schedule    string       `json:"schedule" example:"Monday 10:00-12:00 (2024-03-01 ~ 2024-06-30)"`
	MaxStudents int          `json:"maxStudents"`
	ImageURL    *string      `json:"imageUrl,omitempty" example:"/uploads/courses/3f2a.png"`
	Views       int          `json:"views"`
	IsActive    bool         `json:"isActive"`
	IsEnrolled  *bool        `json:"isEnrolled,omitempty"`
	Instructor  *UserSummary `json:"instructor,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// NewCourseResponse maps a course model to its response
func NewCourseResponse(c *models.Course) CourseResponse {
	b := c.Booking()
	b.Title = ""
	return CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    string(c.Category),
		Weekday:     int(c.Weekday),
		WeekdayName: c.Weekday.String(),
		StartTime:   c.StartTime.String(),
		EndTime:     c.EndTime.String(),
		StartDate:   NewDate(c.StartDate),
		EndDate:     NewDate(c.EndDate),
		Schedule:    schedule.Describe(b),
		MaxStudents: c.MaxStudents,
		ImageURL:    FileURL(c.ImagePath),
		Views:       c.Views,
		IsActive:    c.IsActive,
		Instructor:  NewUserSummary(c.Instructor),
		CreatedAt:   c.CreatedAt,
	}
}

// NewCourseResponses maps a slice of courses
func NewCourseResponses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}

// CourseListResponse is one page of the catalog
type CourseListResponse struct {
	Courses    []CourseResponse `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}

// ScheduleConflictDetails is placed in the error details of a 409 schedule conflict
type ScheduleConflictDetails struct {
	ConflictingCourseID    int64  `json:"conflictingCourseId"`
	ConflictingCourseTitle string `json:"conflictingCourseTitle"`
	Weekday                string `json:"weekday"`
	TimeRange              string `json:"timeRange"`
	DateRange              string `json:"dateRange"`
}
