package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
)

// EnrollmentResponse is a student's view of one enrollment
type EnrollmentResponse struct {
	ID             int64           `json:"id"`
	CourseID       int64           `json:"courseId"`
	Progress       int             `json:"progress"`
	IsCompleted    bool            `json:"isCompleted"`
	LastAccessedAt *time.Time      `json:"lastAccessedAt,omitempty"`
	EnrolledAt     time.Time       `json:"enrolledAt"`
	Course         *CourseResponse `json:"course,omitempty"`
}

// NewEnrollmentResponse maps an enrollment model to its response
func NewEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	resp := EnrollmentResponse{
		ID:             e.ID,
		CourseID:       e.CourseID,
		Progress:       e.Progress,
		IsCompleted:    e.IsCompleted,
		LastAccessedAt: e.LastAccessedAt,
		EnrolledAt:     e.EnrolledAt,
	}
	if e.Course != nil {
		course := NewCourseResponse(e.Course)
		resp.Course = &course
	}
	return resp
}

// ProgressRequest records how far a student got
type ProgressRequest struct {
	Progress *int `json:"progress" binding:"required,min=0,max=100"`
}

// RosterEntry is one student on a course roster
type RosterEntry struct {
	StudentID      int64      `json:"studentId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Progress       int        `json:"progress"`
	IsCompleted    bool       `json:"isCompleted"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	EnrolledAt     time.Time  `json:"enrolledAt"`
}

// ClassSlot is one course meeting shown on a timetable
type ClassSlot struct {
	CourseID  int64  `json:"courseId"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// CalendarResponse maps each day of a month to the classes held that day
type CalendarResponse struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Days  map[int][]ClassSlot `json:"days"`
}

// UpcomingClass is the next meeting of an enrolled course
type UpcomingClass struct {
	ClassSlot
	Date      string `json:"date"`
	DaysUntil int    `json:"daysUntil"`
}

// PendingAssignment is coursework still to be handed in
type PendingAssignment struct {
	AssignmentID int64     `json:"assignmentId"`
	CourseID     int64     `json:"courseId"`
	CourseTitle  string    `json:"courseTitle"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"dueDate"`
}

// DashboardResponse summarises a student's week
type DashboardResponse struct {
	Weekly             map[string][]ClassSlot `json:"weekly"`
	Upcoming           []UpcomingClass        `json:"upcoming"`
	PendingAssignments []PendingAssignment    `json:"pendingAssignments"`
	Courses            []EnrollmentResponse   `json:"courses"`
}
