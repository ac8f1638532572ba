package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"gorm.io/gorm"
)

// CustomerRequest represents the request body for creating or updating a customer
type CustomerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"`
	Email *string `json:"email" binding:"omitempty,email"`
	Notes string  `json:"notes"`
}

// CustomerController manages registered guests
type CustomerController struct {
	db *gorm.DB
}

// NewCustomerController creates a customer controller
func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{db: db}
}

// ListCustomers handles GET /api/v1/customers - q searches name, phone and email
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	query := cc.db.WithContext(c.Request.Context()).Scopes(models.Visible)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern)
	}

	var customers []models.Customer
	if err := query.Order("name ASC").Find(&customers).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customers")
		return
	}
	respondData(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/:id
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/customers
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customer := models.Customer{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	}
	if err := cc.db.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create customer")
		return
	}
	respondData(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	customer, ok := cc.loadCustomer(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Notes = req.Notes
	if err := cc.db.WithContext(c.Request.Context()).Save(customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer")
		return
	}
	respondData(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id (soft delete)
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id", services.ErrCustomerNotFound)
	if !ok {
		return
	}

	err := models.SoftDelete(cc.db.WithContext(c.Request.Context()), &models.Customer{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrCustomerNotFound)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete customer")
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// RestoreCustomer handles POST /api/v1/customers/:id/restore
func (cc *CustomerController) RestoreCustomer(c *gin.Context) {
	id, ok := uuidParam(c, "id", services.ErrCustomerNotFound)
	if !ok {
		return
	}

	db := cc.db.WithContext(c.Request.Context())
	err := models.Restore(db, &models.Customer{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrCustomerNotFound)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to restore customer")
		return
	}

	var customer models.Customer
	if err := db.Where("id = ?", id).First(&customer).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customer")
		return
	}
	respondData(c, http.StatusOK, customer)
}

func (cc *CustomerController) loadCustomer(c *gin.Context) (*models.Customer, bool) {
	id, ok := uuidParam(c, "id", services.ErrCustomerNotFound)
	if !ok {
		return nil, false
	}

	var customer models.Customer
	err := cc.db.WithContext(c.Request.Context()).Scopes(models.Visible).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrCustomerNotFound)
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customer")
		return nil, false
	}
	return &customer, true
}
