package dto

import "github.com/yigit/edulearn/internal/app/models"

// NoticeRequest creates or edits a site notice
type NoticeRequest struct {
	Title      string              `json:"title" binding:"required,max=200"`
	Content    string              `json:"content" binding:"required"`
	NoticeType models.NoticeType   `json:"noticeType" binding:"required,oneof=NOTICE MAINT" enums:"NOTICE,MAINT"`
	Target     models.NoticeTarget `json:"target" binding:"required,oneof=ALL STUDENT TEACHER" enums:"ALL,STUDENT,TEACHER"`
	IsPinned   bool                `json:"isPinned"`
}

// NoticeListResponse is one page of site notices
type NoticeListResponse struct {
	Notices    []*models.Notice `json:"notices"`
	Pagination PaginationInfo   `json:"pagination"`
}
