package models

import "time"

// CourseNotice is an announcement inside one course.
type CourseNotice struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  int64     `json:"courseId" db:"course_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	IsPinned  bool      `json:"isPinned" db:"is_pinned"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// WeeklyContent is the learning material for one week of a course.
type WeeklyContent struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	WeekNumber int       `json:"weekNumber" db:"week_number"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	VideoURL   *string   `json:"videoUrl,omitempty" db:"video_url"`
	FilePath   *string   `json:"filePath,omitempty" db:"file_path"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CourseQuestion is a Q&A thread opened inside a course.
type CourseQuestion struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	AuthorID   int64     `json:"authorId" db:"author_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	IsResolved bool      `json:"isResolved" db:"is_resolved"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Author  *User             `json:"author,omitempty"`
	Answers []*QuestionAnswer `json:"answers,omitempty"`
}

// QuestionAnswer is a reply to a course question.
type QuestionAnswer struct {
	ID                 int64     `json:"id" db:"id"`
	QuestionID         int64     `json:"questionId" db:"question_id"`
	AuthorID           int64     `json:"authorId" db:"author_id"`
	Content            string    `json:"content" db:"content"`
	IsInstructorAnswer bool      `json:"isInstructorAnswer" db:"is_instructor_answer"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`

	Author *User `json:"author,omitempty"`
}
