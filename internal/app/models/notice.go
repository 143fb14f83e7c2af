package models

import "time"

// NoticeType distinguishes regular announcements from maintenance windows.
type NoticeType string

const (
	NoticeTypeNotice NoticeType = "NOTICE"
	NoticeTypeMaint  NoticeType = "MAINT"
)

// NoticeTarget selects the audience of a site notice.
type NoticeTarget string

const (
	NoticeTargetAll     NoticeTarget = "ALL"
	NoticeTargetStudent NoticeTarget = "STUDENT"
	NoticeTargetTeacher NoticeTarget = "TEACHER"
)

// Valid reports whether t is a known notice type.
func (t NoticeType) Valid() bool {
	return t == NoticeTypeNotice || t == NoticeTypeMaint
}

// Valid reports whether t is a known audience.
func (t NoticeTarget) Valid() bool {
	return t == NoticeTargetAll || t == NoticeTargetStudent || t == NoticeTargetTeacher
}

// TargetsFor lists the audiences a role may read. A nil result means no filter.
func TargetsFor(role RoleType) []NoticeTarget {
	switch role {
	case RoleStudent:
		return []NoticeTarget{NoticeTargetAll, NoticeTargetStudent}
	case RoleInstructor:
		return []NoticeTarget{NoticeTargetAll, NoticeTargetTeacher}
	default:
		return nil
	}
}

// Notice is a site-wide announcement.
type Notice struct {
	ID         int64        `json:"id" db:"id"`
	AuthorID   int64        `json:"authorId" db:"author_id"`
	Title      string       `json:"title" db:"title"`
	Content    string       `json:"content" db:"content"`
	NoticeType NoticeType   `json:"noticeType" db:"notice_type"`
	Target     NoticeTarget `json:"target" db:"target"`
	IsPinned   bool         `json:"isPinned" db:"is_pinned"`
	Views      int          `json:"views" db:"views"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" db:"updated_at"`
}
