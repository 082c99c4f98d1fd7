package dbmysql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post statuses. Listings are never hard-deleted, they move to "deleted".
const (
	PostStatusActive  = "active"
	PostStatusPaused  = "paused"
	PostStatusDeleted = "deleted"
)

// Post types.
const (
	PostTypeOffer   = "offer"
	PostTypeRequest = "request"
)

type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"column:user_id;index;size:36;not null" json:"user_id"`
	Type        string    `gorm:"column:type;type:enum('offer','request');not null" json:"type"`
	CategoryID  uint      `gorm:"column:category_id;index" json:"category_id"`
	City        string    `gorm:"column:city;size:100;index" json:"city"`
	Title       string    `gorm:"column:title;size:200;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	PriceCents  *int64    `gorm:"column:price_cents" json:"price_cents,omitempty"`
	PriceUnit   *string   `gorm:"column:price_unit;size:20" json:"price_unit,omitempty"`
	Status      string    `gorm:"column:status;type:enum('active','paused','deleted');default:'active';index" json:"status"`
	ImageID     *string   `gorm:"column:image_id;size:36" json:"image_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
