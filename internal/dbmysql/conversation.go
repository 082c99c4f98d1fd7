package dbmysql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a two-party thread anchored to one listing.
// UserAID is always the post owner, UserBID the enquirer. The unique
// index makes first-contact creation race-safe: concurrent inserts for
// the same (post, pair) collapse onto one row.
type Conversation struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	PostID        string     `gorm:"column:post_id;size:36;not null;uniqueIndex:idx_convo_post_pair,priority:1" json:"post_id"`
	UserAID       string     `gorm:"column:user_a_id;size:36;not null;index;uniqueIndex:idx_convo_post_pair,priority:2" json:"user_a_id"`
	UserBID       string     `gorm:"column:user_b_id;size:36;not null;index;uniqueIndex:idx_convo_post_pair,priority:3" json:"user_b_id"`
	LastMessageAt *time.Time `gorm:"column:last_message_at;index" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the counterpart of userID in the thread.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}
