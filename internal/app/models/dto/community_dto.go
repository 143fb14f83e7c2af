package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
)

// PostRequest creates or edits a community post
type PostRequest struct {
	Board   models.Board `json:"board" binding:"required,oneof=FREE QNA DISCUSSION" enums:"FREE,QNA,DISCUSSION"`
	Title   string       `json:"title" binding:"required,max=200"`
	Content string       `json:"content" binding:"required"`
	IsOpen  *bool        `json:"isOpen"`
}

// PostListQuery filters the community board
type PostListQuery struct {
	Board models.Board `form:"board"`
	Query string       `form:"q"`
	Mine  bool         `form:"mine"`
	Page  int          `form:"page"`
	Size  int          `form:"size"`
}

// PostResponse is the public view of a post
type PostResponse struct {
	ID           int64        `json:"id"`
	Board        string       `json:"board"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	IsOpen       bool         `json:"isOpen"`
	Views        int          `json:"views"`
	CommentCount int          `json:"commentCount"`
	Author       *UserSummary `json:"author,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewPostResponse maps a post model to its response
func NewPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		Board:        string(p.Board),
		Title:        p.Title,
		Content:      p.Content,
		IsOpen:       p.IsOpen,
		Views:        p.Views,
		CommentCount: p.CommentCount,
		Author:       NewUserSummary(p.Author),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PostListResponse is one page of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// CommentRequest adds a comment, optionally as a reply
type CommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *int64 `json:"parentId"`
}

// CommentNode is a comment with its replies
type CommentNode struct {
	ID        int64          `json:"id"`
	ParentID  *int64         `json:"parentId,omitempty"`
	Content   string         `json:"content"`
	IsDeleted bool           `json:"isDeleted"`
	Author    *UserSummary   `json:"author,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Replies   []*CommentNode `json:"replies"`
}
