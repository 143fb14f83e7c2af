package models

import "time"

// Assignment is coursework published by a course instructor.
type Assignment struct {
	ID             int64      `json:"id" db:"id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	DueDate        *time.Time `json:"dueDate,omitempty" db:"due_date"`
	MaxScore       int        `json:"maxScore" db:"max_score"`
	AttachmentPath *string    `json:"attachmentPath,omitempty" db:"attachment_path"`
	CreatedBy      int64      `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// Submission is one student's answer to an assignment.
type Submission struct {
	ID           int64      `json:"id" db:"id"`
	AssignmentID int64      `json:"assignmentId" db:"assignment_id"`
	StudentID    int64      `json:"studentId" db:"student_id"`
	Content      string     `json:"content" db:"content"`
	FilePath     *string    `json:"filePath,omitempty" db:"file_path"`
	Score        *int       `json:"score,omitempty" db:"score"`
	Feedback     *string    `json:"feedback,omitempty" db:"feedback"`
	GradedAt     *time.Time `json:"gradedAt,omitempty" db:"graded_at"`
	SubmittedAt  time.Time  `json:"submittedAt" db:"submitted_at"`

	// Related entities
	Student *User `json:"student,omitempty"`
}

// IsGraded reports whether a score has been recorded.
func (s *Submission) IsGraded() bool {
	return s.Score != nil
}
