package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels of generated QR codes
const DefaultQRSize = 256

// InvoiceLine is one printed line of an invoice
type InvoiceLine struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
	Notes       string `json:"notes,omitempty"`
}

// Invoice is the receipt view of an order
type Invoice struct {
	ShopName      string        `json:"shop_name"`
	Currency      string        `json:"currency"`
	OrderID       uuid.UUID     `json:"order_id"`
	DisplayID     string        `json:"display_id"`
	NumericID     *int64        `json:"numeric_id"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"payment_method"`
	TableNumber   string        `json:"table_number,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      string        `json:"subtotal"`
	TaxRate       string        `json:"tax_rate"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Footer        string        `json:"footer"`
	IssuedAt      time.Time     `json:"issued_at"`
}

// InvoiceService renders receipts and QR codes for orders
type InvoiceService struct {
	orders   *OrderService
	settings *SettingsService
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(orders *OrderService, settings *SettingsService) *InvoiceService {
	return &InvoiceService{orders: orders, settings: settings}
}

// Invoice builds the receipt for an order
func (s *InvoiceService) Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.All(ctx)
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		ShopName:      settings[models.SettingShopName],
		Currency:      settings[models.SettingCurrency],
		OrderID:       order.ID,
		DisplayID:     order.DisplayID,
		NumericID:     order.NumericID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		TableNumber:   order.TableNumber,
		Subtotal:      order.Subtotal.StringFixed(2),
		TaxRate:       settings[models.SettingTaxRate],
		Tax:           order.Tax.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Footer:        settings[models.SettingReceiptFooter],
		IssuedAt:      time.Now(),
	}
	if order.Customer != nil {
		invoice.CustomerName = order.Customer.Name
	}
	for _, item := range order.Items {
		invoice.Lines = append(invoice.Lines, InvoiceLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Subtotal:    item.Subtotal.StringFixed(2),
			Notes:       item.Notes,
		})
	}
	return invoice, nil
}

// QRPayload is the text encoded into an order's QR code
func QRPayload(order *models.Order) string {
	numeric := "-"
	if order.NumericID != nil {
		numeric = fmt.Sprintf("%d", *order.NumericID)
	}
	return fmt.Sprintf("ORDER|%s|%s|%s", order.DisplayID, numeric, order.Total.StringFixed(2))
}

// QRCode returns a PNG QR code identifying the order at the counter
func (s *InvoiceService) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	png, err := qrcode.Encode(QRPayload(order), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
