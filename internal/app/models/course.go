package models

import (
	"time"

	"github.com/yigit/edulearn/internal/pkg/schedule"
)

// CourseCategory groups courses in the catalog.
type CourseCategory string

const (
	CategoryDigital   CourseCategory = "DIGITAL"
	CategoryAI        CourseCategory = "AI"
	CategoryMaking    CourseCategory = "MAKING"
	CategoryComputing CourseCategory = "COMPUTING"
	CategoryGeneral   CourseCategory = "GENERAL"
)

// Valid reports whether c is a known category.
func (c CourseCategory) Valid() bool {
	switch c {
	case CategoryDigital, CategoryAI, CategoryMaking, CategoryComputing, CategoryGeneral:
		return true
	}
	return false
}

// Course is a weekly recurring class taught by one instructor.
type Course struct {
	ID           int64            `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Description  string           `json:"description" db:"description"`
	Category     CourseCategory   `json:"category" db:"category"`
	InstructorID int64            `json:"instructorId" db:"instructor_id"`
	Weekday      schedule.Weekday `json:"weekday" db:"weekday"`
	StartTime    schedule.Clock   `json:"startTime" db:"start_time"`
	EndTime      schedule.Clock   `json:"endTime" db:"end_time"`
	StartDate    *time.Time       `json:"startDate,omitempty" db:"start_date"`
	EndDate      *time.Time       `json:"endDate,omitempty" db:"end_date"`
	MaxStudents  int              `json:"maxStudents" db:"max_students"`
	ImagePath    *string          `json:"imagePath,omitempty" db:"image_path"`
	Views        int              `json:"views" db:"views"`
	IsActive     bool             `json:"isActive" db:"is_active"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`

	// Related entities
	Instructor *User `json:"instructor,omitempty"`
}

// Booking returns the course's weekly slot in checker form.
func (c *Course) Booking() schedule.Booking {
	start, end := c.StartTime, c.EndTime
	return schedule.Booking{
		ID:        c.ID,
		Title:     c.Title,
		Weekday:   c.Weekday,
		StartTime: &start,
		EndTime:   &end,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
}

// IsOpen reports whether the course is active and has not ended before today.
func (c *Course) IsOpen(today time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.EndDate == nil {
		return true
	}
	y, m, d := today.Date()
	return !c.EndDate.Before(time.Date(y, m, d, 0, 0, 0, 0, c.EndDate.Location()))
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID             int64      `json:"id" db:"id"`
	StudentID      int64      `json:"studentId" db:"student_id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	Progress       int        `json:"progress" db:"progress"`
	IsCompleted    bool       `json:"isCompleted" db:"is_completed"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty" db:"last_accessed_at"`
	EnrolledAt     time.Time  `json:"enrolledAt" db:"enrolled_at"`

	// Related entities
	Course  *Course `json:"course,omitempty"`
	Student *User   `json:"student,omitempty"`
}
