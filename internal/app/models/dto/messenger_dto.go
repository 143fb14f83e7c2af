package dto

import (
	"time"

	"github.com/yigit/edulearn/internal/app/models"
)

// ChannelRequest opens a messenger channel
type ChannelRequest struct {
	Name        string             `json:"name" binding:"required,max=200"`
	ChannelType models.ChannelType `json:"channelType" binding:"required,oneof=COUNSELING COORDINATION" enums:"COUNSELING,COORDINATION"`
	MemberIDs   []int64            `json:"memberIds"`
}

// AddMembersRequest invites users to a channel
type AddMembersRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1"`
}

// MessageRequest posts a message over HTTP
type MessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// MessageResponse is the wire form of a chat message, shared with the websocket
type MessageResponse struct {
	ID         int64     `json:"id"`
	ChannelID  int64     `json:"channelId"`
	SenderID   int64     `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	SentAt     time.Time `json:"sentAt"`
}

// NewMessageResponse maps a message model to its wire form
func NewMessageResponse(m *models.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsRead:    m.IsRead,
		SentAt:    m.SentAt,
	}
	if m.Sender != nil {
		resp.SenderName = m.Sender.FullName()
	}
	return resp
}

// MessageListResponse is one page of channel history, newest first
type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	Pagination PaginationInfo    `json:"pagination"`
}
