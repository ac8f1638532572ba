package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/kendall-kelly/cafe-pos-api/middleware"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
)

// UpdateOrderStatusRequest represents the request body for moving an order along
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing ready completed cancelled"`
}

// OrderController takes and tracks counter orders. Order path parameters
// accept either the UUID or its numeric form.
type OrderController struct {
	orders   *services.OrderService
	invoices *services.InvoiceService
	resolver *services.IDResolver
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService, invoices *services.InvoiceService, resolver *services.IDResolver) *OrderController {
	return &OrderController{orders: orders, invoices: invoices, resolver: resolver}
}

// CreateOrder handles POST /api/v1/orders - accepts the canonical payload and
// every legacy field spelling
func (o *OrderController) CreateOrder(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondValidationError(c, err)
		return
	}

	input, err := models.DecodeOrderInput(body)
	if err != nil {
		respondValidationError(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(input); err != nil {
		respondValidationError(c, err)
		return
	}

	cashier, _ := middleware.GetCurrentUser(c)
	order, err := o.orders.Create(c.Request.Context(), input, cashier)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders - supports status, customer_id and limit
func (o *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{Status: c.Query("status")}

	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "customer_id must be a UUID")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	orders, err := o.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (o *OrderController) GetOrder(c *gin.Context) {
	id, ok := o.orderID(c)
	if !ok {
		return
	}

	order, err := o.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func (o *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := o.orderID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	actor, _ := middleware.GetCurrentUser(c)
	order, err := o.orders.UpdateStatus(c.Request.Context(), id, req.Status, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id (soft delete)
func (o *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := o.orderID(c)
	if !ok {
		return
	}

	if err := o.orders.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// RestoreOrder handles POST /api/v1/orders/:id/restore. Numeric ids resolve
// against deleted orders only.
func (o *OrderController) RestoreOrder(c *gin.Context) {
	id, ok := o.resolver.DeletedOrderID(c.Request.Context(), c.Param("id"))
	if !ok {
		respondServiceError(c, services.ErrOrderNotFound)
		return
	}

	order, err := o.orders.Restore(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// GetOrderInvoice handles GET /api/v1/orders/:id/invoice
func (o *OrderController) GetOrderInvoice(c *gin.Context) {
	id, ok := o.orderID(c)
	if !ok {
		return
	}

	invoice, err := o.invoices.Invoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, invoice)
}

// GetOrderQRCode handles GET /api/v1/orders/:id/qr - returns a PNG; size sets
// the edge length in pixels
func (o *OrderController) GetOrderQRCode(c *gin.Context) {
	id, ok := o.orderID(c)
	if !ok {
		return
	}

	size := services.DefaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := o.invoices.QRCode(c.Request.Context(), id, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// orderID resolves the :id parameter against visible orders
func (o *OrderController) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := o.resolver.OrderID(c.Request.Context(), c.Param("id"))
	if !ok {
		respondServiceError(c, services.ErrOrderNotFound)
		return uuid.Nil, false
	}
	return id, true
}
