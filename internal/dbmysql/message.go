package dbmysql

import (
	"time"
)

// Message belongs to exactly one conversation. IsRead is the canonical
// unread flag; ReadAt is an informational stamp set when the flag flips.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;index;size:36;not null" json:"conversation_id"`
	SenderID       string     `gorm:"column:sender_id;index;size:36;not null" json:"sender_id"`
	Body           string     `gorm:"column:body;type:text;not null" json:"body"`
	IsRead         bool       `gorm:"column:is_read;index;default:false" json:"is_read"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
