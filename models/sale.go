package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale records the payment of a completed order
type Sale struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NumericID *int64    `gorm:"-" json:"numeric_id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	// OrderNumber is the legacy integer reference of the order, derived from OrderID
	OrderNumber   int64           `gorm:"not null;index" json:"order_number"`
	CashierID     *uuid.UUID      `gorm:"type:uuid;index" json:"cashier_id"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod string          `gorm:"not null" json:"payment_method"`
	PaidAt        time.Time       `gorm:"not null;index" json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// BeforeCreate assigns the primary key
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// AssignReferences fills the computed numeric id
func (s *Sale) AssignReferences(maxDigits int) {
	if n, ok := idbridge.NumericUUID(s.ID, maxDigits); ok {
		s.NumericID = &n
	}
}
