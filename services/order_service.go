package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultOrderListLimit = 50
	maxOrderListLimit     = 200
)

var hundred = decimal.NewFromInt(100)

// OrderFilter narrows ListOrders
type OrderFilter struct {
	Status     string
	CustomerID *uuid.UUID
	Limit      int
}

// OrderService owns order creation, status changes and invoicing
type OrderService struct {
	db            *gorm.DB
	settings      *SettingsService
	notifications *NotificationService
	resolver      *IDResolver
}

// NewOrderService creates an order service
func NewOrderService(db *gorm.DB, settings *SettingsService, notifications *NotificationService, resolver *IDResolver) *OrderService {
	return &OrderService{
		db:            db,
		settings:      settings,
		notifications: notifications,
		resolver:      resolver,
	}
}

// Create prices the requested items, reserves stock and stores the order in
// a single transaction
func (s *OrderService) Create(ctx context.Context, input *models.OrderInput, cashier *models.User) (*models.Order, error) {
	taxRate, err := s.settings.TaxRate(ctx)
	if err != nil {
		return nil, err
	}
	lowStockLevel, err := s.settings.LowStockLevel(ctx)
	if err != nil {
		return nil, err
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}

	order := models.Order{
		TableNumber:   input.TableNumber,
		Status:        models.OrderStatusPending,
		PaymentMethod: paymentMethod,
		Notes:         input.Notes,
	}
	if cashier != nil {
		order.CashierID = &cashier.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CustomerID != nil {
			customerID, err := s.visibleCustomer(tx, *input.CustomerID)
			if err != nil {
				return err
			}
			order.CustomerID = &customerID
		}

		subtotal := decimal.Zero
		for _, item := range input.Items {
			line, err := s.reserveItem(tx, item, lowStockLevel)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *line)
			subtotal = subtotal.Add(line.Subtotal)
		}

		order.Subtotal = subtotal
		order.Tax = subtotal.Mul(taxRate).Div(hundred).Round(2)
		order.Total = order.Subtotal.Add(order.Tax)

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		order.AssignReferences(s.resolver.MaxDigits())
		return s.notifications.NotifyOrder(tx, &order, models.NotificationOrderCreated,
			"New order", fmt.Sprintf("Order %s was placed (%d items)", order.DisplayID, len(order.Items)))
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, order.ID)
}

func (s *OrderService) visibleCustomer(tx *gorm.DB, raw string) (uuid.UUID, error) {
	customerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrCustomerNotFound
	}

	var count int64
	if err := tx.Model(&models.Customer{}).Scopes(models.Visible).Where("id = ?", customerID).Count(&count).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if count == 0 {
		return uuid.Nil, ErrCustomerNotFound
	}
	return customerID, nil
}

// reserveItem prices one line and decrements stock only when enough is left
func (s *OrderService) reserveItem(tx *gorm.DB, item models.OrderItemInput, lowStockLevel int) (*models.OrderItem, error) {
	productID, err := uuid.Parse(item.ProductID)
	if err != nil {
		return nil, withMessage(ErrProductNotFound, "Product %s not found", item.ProductID)
	}

	var product models.Product
	err = tx.Scopes(models.Visible).Where("id = ?", productID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, withMessage(ErrProductNotFound, "Product %s not found", item.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.Available {
		return nil, withMessage(ErrProductUnavailable, "%s is not available", product.Name)
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", product.ID, item.Quantity).
		Update("stock", gorm.Expr("stock - ?", item.Quantity))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, withMessage(ErrInsufficientStock, "Not enough stock for %s", product.Name)
	}

	if remaining := product.Stock - item.Quantity; remaining <= lowStockLevel {
		if err := s.notifications.NotifyLowStock(tx, &product, remaining); err != nil {
			return nil, err
		}
	}

	return &models.OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    item.Quantity,
		UnitPrice:   product.Price,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		Notes:       item.Notes,
	}, nil
}

// Get returns a visible order with its items and customer
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Scopes(models.Visible).
		Preload("Items").
		Preload("Customer").
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	order.AssignReferences(s.resolver.MaxDigits())
	return &order, nil
}

// List returns visible orders, newest first
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	query := s.db.WithContext(ctx).Scopes(models.Visible).Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	for i := range orders {
		orders[i].AssignReferences(s.resolver.MaxDigits())
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. Completing an order
// records a Sale; cancelling it returns the reserved stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor *models.User) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Scopes(models.Visible).Preload("Items").Where("id = ?", id).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to fetch order: %w", err)
		}

		if !models.CanTransition(order.Status, status) {
			return withMessage(ErrInvalidTransition, "Cannot move order from %s to %s", order.Status, status)
		}

		// the status guard makes concurrent transitions lose cleanly
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return withMessage(ErrInvalidTransition, "Order status changed concurrently")
		}

		switch status {
		case models.OrderStatusCompleted:
			if err := s.recordSale(tx, &order, actor); err != nil {
				return err
			}
		case models.OrderStatusCancelled:
			if err := restock(tx, order.Items); err != nil {
				return err
			}
		}

		order.Status = status
		order.AssignReferences(s.resolver.MaxDigits())
		return s.notifications.NotifyOrder(tx, &order, models.NotificationOrderStatus,
			"Order "+status, fmt.Sprintf("Order %s is now %s", order.DisplayID, status))
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *OrderService) recordSale(tx *gorm.DB, order *models.Order, actor *models.User) error {
	orderNumber, _ := idbridge.NumericUUID(order.ID, s.resolver.MaxDigits())
	sale := models.Sale{
		OrderID:       order.ID,
		OrderNumber:   orderNumber,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		PaidAt:        time.Now(),
	}
	if actor != nil {
		sale.CashierID = &actor.ID
	}
	if err := tx.Create(&sale).Error; err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	return nil
}

func restock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to restock product: %w", err)
		}
	}
	return nil
}

// Delete tombstones an order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := models.SoftDelete(s.db.WithContext(ctx), &models.Order{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// Restore clears an order's tombstone
func (s *OrderService) Restore(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	err := models.Restore(s.db.WithContext(ctx), &models.Order{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to restore order: %w", err)
	}
	return s.Get(ctx, id)
}
