package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentQRIS     = "qris"
	PaymentTransfer = "transfer"
)

var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted, OrderStatusCancelled},
}

// Order is a café order taken at the counter
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NumericID     *int64          `gorm:"-" json:"numeric_id"` // computed, bounded numeric form of ID
	DisplayID     string          `gorm:"-" json:"display_id"` // computed, short code for receipts
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CashierID     *uuid.UUID      `gorm:"type:uuid;index" json:"cashier_id"`
	Cashier       *User           `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	TableNumber   string          `json:"table_number"`
	Status        string          `gorm:"not null;default:'pending';index" json:"status"`
	PaymentMethod string          `gorm:"not null;default:'cash'" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the primary key
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// AssignReferences fills the computed numeric and display ids
func (o *Order) AssignReferences(maxDigits int) {
	if n, ok := idbridge.NumericUUID(o.ID, maxDigits); ok {
		o.NumericID = &n
	}
	o.DisplayID = idbridge.DisplayID(o.ID.String(), idbridge.DefaultDisplayLength)
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidPaymentMethod reports whether method is accepted at the counter
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentQRIS, PaymentTransfer:
		return true
	}
	return false
}

// OrderItem is one line of an order, priced at the time of ordering
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeCreate assigns the primary key
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
