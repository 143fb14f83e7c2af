package models

import "time"

// Board identifies a community board.
type Board string

const (
	BoardFree       Board = "FREE"
	BoardQnA        Board = "QNA"
	BoardDiscussion Board = "DISCUSSION"
)

// Valid reports whether b is a known board.
func (b Board) Valid() bool {
	return b == BoardFree || b == BoardQnA || b == BoardDiscussion
}

// Post is a community board entry.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Board     Board     `json:"board" db:"board"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	IsOpen    bool      `json:"isOpen" db:"is_open"`
	Views     int       `json:"views" db:"views"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Author       *User `json:"author,omitempty"`
	CommentCount int   `json:"commentCount"`
}

// Comment is a reply on a post, optionally nested under another comment.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	ParentID  *int64    `json:"parentId,omitempty" db:"parent_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	IsDeleted bool      `json:"isDeleted" db:"is_deleted"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Author *User `json:"author,omitempty"`
}
