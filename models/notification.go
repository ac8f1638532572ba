package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationOrderCreated = "order_created"
	NotificationOrderStatus  = "order_status"
	NotificationLowStock     = "low_stock"
	RelatedTypeOrder         = "order"
	RelatedTypeProduct       = "product"
)

// Notification is a message shown to staff. A nil UserID is a broadcast.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Type        string     `gorm:"not null;index" json:"type"`
	Title       string     `gorm:"not null" json:"title"`
	Message     string     `gorm:"type:text" json:"message"`
	RelatedType string     `json:"related_type"`
	// RelatedID holds the bounded numeric form of the related entity's UUID
	RelatedID *int64    `gorm:"index" json:"related_id"`
	Read      bool      `gorm:"column:is_read;not null" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the primary key
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}
