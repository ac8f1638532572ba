package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/idbridge"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"gorm.io/gorm"
)

// IDResolver turns path parameters that may be a UUID or a numeric id into
// a UUID, using the reverse lookup for numeric input.
type IDResolver struct {
	maxDigits     int
	orders        *idbridge.Finder
	deletedOrders *idbridge.Finder
	sales         *idbridge.Finder
}

// NewIDResolver builds finders over the orders and sales tables
func NewIDResolver(db *gorm.DB, cfg *config.Config) *IDResolver {
	opts := []idbridge.Option{
		idbridge.WithMaxDigits(cfg.IDMaxDigits),
		idbridge.WithFetchLimit(cfg.IDFetchLimit),
	}
	return &IDResolver{
		maxDigits:     idbridge.NormalizeDigits(cfg.IDMaxDigits),
		orders:        idbridge.NewFinder(idbridge.NewGormSource(db, models.Order{}.TableName(), models.Visible), opts...),
		deletedOrders: idbridge.NewFinder(idbridge.NewGormSource(db, models.Order{}.TableName(), models.Deleted), opts...),
		sales:         idbridge.NewFinder(idbridge.NewGormSource(db, models.Sale{}.TableName(), models.Visible), opts...),
	}
}

// MaxDigits is the digit bound used for every numeric id the API emits
func (r *IDResolver) MaxDigits() int {
	return r.maxDigits
}

// Numeric returns the numeric form of id, or nil when it has none
func (r *IDResolver) Numeric(id uuid.UUID) *int64 {
	n, ok := idbridge.NumericUUID(id, r.maxDigits)
	if !ok {
		return nil
	}
	return &n
}

// OrderID resolves raw against visible orders
func (r *IDResolver) OrderID(ctx context.Context, raw string) (uuid.UUID, bool) {
	return parseResolved(r.orders.Resolve(ctx, raw))
}

// DeletedOrderID resolves raw against soft-deleted orders
func (r *IDResolver) DeletedOrderID(ctx context.Context, raw string) (uuid.UUID, bool) {
	return parseResolved(r.deletedOrders.Resolve(ctx, raw))
}

// SaleID resolves raw against visible sales
func (r *IDResolver) SaleID(ctx context.Context, raw string) (uuid.UUID, bool) {
	return parseResolved(r.sales.Resolve(ctx, raw))
}

// OrderByNumeric resolves a stored numeric reference back to an order id
func (r *IDResolver) OrderByNumeric(ctx context.Context, numericID int64) (uuid.UUID, bool, error) {
	canonical, found, err := r.orders.Find(ctx, numericID)
	if err != nil || !found {
		return uuid.Nil, false, err
	}
	id, ok := parseResolved(canonical)
	return id, ok, nil
}

// parseResolved accepts only UUID-shaped values; an unresolved numeric id
// falls through here unconverted and is reported as absent
func parseResolved(value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
