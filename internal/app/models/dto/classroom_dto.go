package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
)

// CourseNoticeRequest creates or edits a course notice
type CourseNoticeRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	IsPinned bool   `json:"isPinned"`
}

// WeeklyContentRequest is posted as multipart form with an optional material file
type WeeklyContentRequest struct {
	WeekNumber int    `form:"weekNumber" json:"weekNumber" binding:"required,min=1,max=52"`
	Title      string `form:"title" json:"title" binding:"required,max=200"`
	Content    string `form:"content" json:"content"`
	VideoURL   string `form:"videoUrl" json:"videoUrl" binding:"omitempty,url"`
}

// QuestionRequest opens a Q&A thread
type QuestionRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// AnswerRequest replies to a question
type AnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

// AnswerResponse is one reply in a Q&A thread
type AnswerResponse struct {
	ID                 int64        `json:"id"`
	Content            string       `json:"content"`
	IsInstructorAnswer bool         `json:"isInstructorAnswer"`
	Author             *UserSummary `json:"author,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
}

// QuestionResponse is a question with its answers
type QuestionResponse struct {
	ID         int64            `json:"id"`
	CourseID   int64            `json:"courseId"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	IsResolved bool             `json:"isResolved"`
	Author     *UserSummary     `json:"author,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	Answers    []AnswerResponse `json:"answers"`
}

// NewQuestionResponse maps a question and any loaded answers
func NewQuestionResponse(q *models.CourseQuestion) QuestionResponse {
	resp := QuestionResponse{
		ID:         q.ID,
		CourseID:   q.CourseID,
		Title:      q.Title,
		Content:    q.Content,
		IsResolved: q.IsResolved,
		Author:     NewUserSummary(q.Author),
		CreatedAt:  q.CreatedAt,
		Answers:    make([]AnswerResponse, 0, len(q.Answers)),
	}
	for _, a := range q.Answers {
		resp.Answers = append(resp.Answers, AnswerResponse{
			ID:                 a.ID,
			Content:            a.Content,
			IsInstructorAnswer: a.IsInstructorAnswer,
			Author:             NewUserSummary(a.Author),
			CreatedAt:          a.CreatedAt,
		})
	}
	return resp
}
