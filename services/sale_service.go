package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleFilter bounds sales by payment time; nil bounds are open
type SaleFilter struct {
	From *time.Time
	To   *time.Time
}

// SalesSummary aggregates sales over a period
type SalesSummary struct {
	Count           int               `json:"count"`
	Total           string            `json:"total"`
	Average         string            `json:"average"`
	ByPaymentMethod map[string]string `json:"by_payment_method"`
}

// SaleService reads recorded sales
type SaleService struct {
	db       *gorm.DB
	resolver *IDResolver
}

// NewSaleService creates a sale service
func NewSaleService(db *gorm.DB, resolver *IDResolver) *SaleService {
	return &SaleService{db: db, resolver: resolver}
}

func (s *SaleService) query(ctx context.Context, filter SaleFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Scopes(models.Visible)
	if filter.From != nil {
		query = query.Where("paid_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("paid_at < ?", *filter.To)
	}
	return query
}

// List returns sales in the period, most recent first
func (s *SaleService) List(ctx context.Context, filter SaleFilter) ([]models.Sale, error) {
	var sales []models.Sale
	if err := s.query(ctx, filter).Order("paid_at DESC").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	for i := range sales {
		sales[i].AssignReferences(s.resolver.MaxDigits())
	}
	return sales, nil
}

// Get returns a sale with its order
func (s *SaleService) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Scopes(models.Visible).Preload("Order.Items").Where("id = ?", id).First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}

	sale.AssignReferences(s.resolver.MaxDigits())
	if sale.Order != nil {
		sale.Order.AssignReferences(s.resolver.MaxDigits())
	}
	return &sale, nil
}

// Summary totals sales in the period, overall and per payment method
func (s *SaleService) Summary(ctx context.Context, filter SaleFilter) (*SalesSummary, error) {
	sales, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	byMethod := map[string]decimal.Decimal{}
	for _, sale := range sales {
		total = total.Add(sale.Total)
		byMethod[sale.PaymentMethod] = byMethod[sale.PaymentMethod].Add(sale.Total)
	}

	summary := &SalesSummary{
		Count:           len(sales),
		Total:           total.StringFixed(2),
		Average:         decimal.Zero.StringFixed(2),
		ByPaymentMethod: make(map[string]string, len(byMethod)),
	}
	if len(sales) > 0 {
		summary.Average = total.Div(decimal.NewFromInt(int64(len(sales)))).StringFixed(2)
	}
	for method, amount := range byMethod {
		summary.ByPaymentMethod[method] = amount.StringFixed(2)
	}
	return summary, nil
}
