package models

import "time"

// ChannelType classifies messenger channels.
type ChannelType string

const (
	ChannelCounseling   ChannelType = "COUNSELING"
	ChannelCoordination ChannelType = "COORDINATION"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	return t == ChannelCounseling || t == ChannelCoordination
}

// Channel is a private conversation between its members.
type Channel struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	ChannelType ChannelType `json:"channelType" db:"channel_type"`
	CreatedBy   int64       `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`

	Members     []*User `json:"members,omitempty"`
	UnreadCount int     `json:"unreadCount"`
}

// Message is a single chat line in a channel.
type Message struct {
	ID        int64     `json:"id" db:"id"`
	ChannelID int64     `json:"channelId" db:"channel_id"`
	SenderID  int64     `json:"senderId" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	SentAt    time.Time `json:"sentAt" db:"sent_at"`

	Sender *User `json:"sender,omitempty"`
}
