package services

import (
	"testing"

	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	resolver      *IDResolver
	settings      *SettingsService
	notifications *NotificationService
	orders        *OrderService
	sales         *SaleService
	invoices      *InvoiceService
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	cfg := &config.Config{IDMaxDigits: 9, IDFetchLimit: 100}

	resolver := NewIDResolver(db, cfg)
	settings := NewSettingsService(db)
	notifications := NewNotificationService(db, resolver)
	orders := NewOrderService(db, settings, notifications, resolver)

	return &testEnv{
		db:            db,
		cfg:           cfg,
		resolver:      resolver,
		settings:      settings,
		notifications: notifications,
		orders:        orders,
		sales:         NewSaleService(db, resolver),
		invoices:      NewInvoiceService(orders, settings),
	}
}

func (e *testEnv) createProduct(t *testing.T, name string, price int64, stock int) models.Product {
	product := models.Product{
		Name:      name,
		Category:  "coffee",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		Available: true,
	}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

func (e *testEnv) createCashier(t *testing.T) models.User {
	user := models.User{
		Auth0ID: "auth0|cashier",
		Name:    "Cashier",
		Email:   "cashier@example.com",
		Role:    models.RoleCashier,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) productStock(t *testing.T, product models.Product) int {
	var fresh models.Product
	require.NoError(t, e.db.First(&fresh, "id = ?", product.ID).Error)
	return fresh.Stock
}

func orderInput(items ...models.OrderItemInput) *models.OrderInput {
	return &models.OrderInput{TableNumber: "4", Items: items}
}

func line(product models.Product, quantity int) models.OrderItemInput {
	return models.OrderItemInput{ProductID: product.ID.String(), Quantity: quantity}
}
