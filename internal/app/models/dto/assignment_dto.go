package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
)

// AssignmentRequest is posted as multipart form so an attachment can ride along
type AssignmentRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description"`
	DueDate     string `form:"dueDate" json:"dueDate" example:"2024-05-01T23:59:00+09:00"`
	MaxScore    int    `form:"maxScore" json:"maxScore" binding:"omitempty,min=1,max=1000"`
}

// AssignmentResponse is the public view of an assignment
type AssignmentResponse struct {
	ID            int64      `json:"id"`
	CourseID      int64      `json:"courseId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	MaxScore      int        `json:"maxScore"`
	AttachmentURL *string    `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewAssignmentResponse maps an assignment model to its response
func NewAssignmentResponse(a *models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID,
		CourseID:      a.CourseID,
		Title:         a.Title,
		Description:   a.Description,
		DueDate:       a.DueDate,
		MaxScore:      a.MaxScore,
		AttachmentURL: a.AttachmentPath,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// SubmissionRequest carries the text part of a submission; the file is optional
type SubmissionRequest struct {
	Content string `form:"content" json:"content"`
}

// GradeRequest scores a submission
type GradeRequest struct {
	Score    *int   `json:"score" binding:"required,min=0"`
	Feedback string `json:"feedback"`
}

// SubmissionResponse is the public view of a submission
type SubmissionResponse struct {
	ID           int64        `json:"id"`
	AssignmentID int64        `json:"assignmentId"`
	Student      *UserSummary `json:"student,omitempty"`
	StudentID    int64        `json:"studentId"`
	Content      string       `json:"content"`
	FileURL      *string      `json:"fileUrl,omitempty"`
	Score        *int         `json:"score,omitempty"`
	Feedback     *string      `json:"feedback,omitempty"`
	GradedAt     *time.Time   `json:"gradedAt,omitempty"`
	SubmittedAt  time.Time    `json:"submittedAt"`
}

// NewSubmissionResponse maps a submission model to its response
func NewSubmissionResponse(s *models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		Student:      NewUserSummary(s.Student),
		StudentID:    s.StudentID,
		Content:      s.Content,
		FileURL:      s.FilePath,
		Score:        s.Score,
		Feedback:     s.Feedback,
		GradedAt:     s.GradedAt,
		SubmittedAt:  s.SubmittedAt,
	}
}
