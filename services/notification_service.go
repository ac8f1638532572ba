package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"gorm.io/gorm"
)

// NotificationService records and reads staff notifications
type NotificationService struct {
	db       *gorm.DB
	resolver *IDResolver
}

// NewNotificationService creates a notification service
func NewNotificationService(db *gorm.DB, resolver *IDResolver) *NotificationService {
	return &NotificationService{db: db, resolver: resolver}
}

// NotifyOrder broadcasts a notification about order, referencing it by its
// numeric id because related_id is an integer column
func (s *NotificationService) NotifyOrder(tx *gorm.DB, order *models.Order, kind, title, message string) error {
	notification := models.Notification{
		Type:        kind,
		Title:       title,
		Message:     message,
		RelatedType: models.RelatedTypeOrder,
		RelatedID:   s.resolver.Numeric(order.ID),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// NotifyLowStock broadcasts a low stock warning for product
func (s *NotificationService) NotifyLowStock(tx *gorm.DB, product *models.Product, remaining int) error {
	notification := models.Notification{
		Type:        models.NotificationLowStock,
		Title:       "Low stock",
		Message:     fmt.Sprintf("%s has %d left in stock", product.Name, remaining),
		RelatedType: models.RelatedTypeProduct,
		RelatedID:   s.resolver.Numeric(product.ID),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List returns notifications addressed to userID or broadcast, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.db.WithContext(ctx).Scopes(audience(userID))
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

// Get returns a notification visible to userID
func (s *NotificationService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).Scopes(audience(userID)).Where("id = ?", id).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}
	return &notification, nil
}

// MarkRead flags a single notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	notification, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(notification).Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	notification.Read = true
	return notification, nil
}

// MarkAllRead flags every unread notification visible to userID as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Scopes(audience(userID)).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RelatedOrderID resolves the numeric related_id of an order notification
// back to the order's UUID. Collisions resolve to the most recent order.
func (s *NotificationService) RelatedOrderID(ctx context.Context, notification *models.Notification) (uuid.UUID, error) {
	if notification.RelatedType != models.RelatedTypeOrder || notification.RelatedID == nil {
		return uuid.Nil, ErrRelatedNotFound
	}

	id, found, err := s.resolver.OrderByNumeric(ctx, *notification.RelatedID)
	if err != nil {
		// no unconverted id to fall back to; report the reference as stale
		log.Printf("Failed to resolve related order %d of notification %s: %v", *notification.RelatedID, notification.ID, err)
		return uuid.Nil, ErrRelatedNotFound
	}
	if !found {
		return uuid.Nil, ErrRelatedNotFound
	}
	return id, nil
}

func audience(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id IS NULL OR user_id = ?)", userID)
	}
}
