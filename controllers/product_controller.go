package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRequest represents the request body for creating a product
type ProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       int              `json:"stock" binding:"gte=0"`
	Available   *bool            `json:"available"`
}

// UpdateProductRequest represents the request body for updating a product;
// absent fields are left unchanged
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Available   *bool            `json:"available"`
}

// ProductController manages the menu
type ProductController struct {
	db     *gorm.DB
	images services.ImageService
}

// NewProductController creates a product controller
func NewProductController(db *gorm.DB, images services.ImageService) *ProductController {
	return &ProductController{db: db, images: images}
}

// ListProducts handles GET /api/v1/products - supports category and available filters
func (p *ProductController) ListProducts(c *gin.Context) {
	query := p.db.WithContext(c.Request.Context()).Scopes(models.Visible)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("available") == "true" {
		query = query.Where("available = ?", true)
	}

	var products []models.Product
	if err := query.Order("category ASC, name ASC").Find(&products).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch products")
		return
	}

	for i := range products {
		p.attachImageURL(c.Request.Context(), &products[i])
	}
	respondData(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (p *ProductController) GetProduct(c *gin.Context) {
	product, ok := p.loadProduct(c)
	if !ok {
		return
	}
	p.attachImageURL(c.Request.Context(), product)
	respondData(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products (admin only)
func (p *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Price.IsNegative() {
		respondValidationError(c, errors.New("price must not be negative"))
		return
	}

	product := models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		Available:   true,
	}
	if req.Available != nil {
		product.Available = *req.Available
	}

	if err := p.db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product")
		return
	}

	respondData(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id (admin only)
func (p *ProductController) UpdateProduct(c *gin.Context) {
	product, ok := p.loadProduct(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			respondValidationError(c, errors.New("price must not be negative"))
			return
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}

	if len(updates) > 0 {
		if err := p.db.WithContext(c.Request.Context()).Model(product).Updates(updates).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product")
			return
		}
	}

	p.respondProduct(c, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin only, soft delete)
func (p *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", services.ErrProductNotFound)
	if !ok {
		return
	}

	err := models.SoftDelete(p.db.WithContext(c.Request.Context()), &models.Product{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrProductNotFound)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product")
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// RestoreProduct handles POST /api/v1/products/:id/restore (admin only)
func (p *ProductController) RestoreProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", services.ErrProductNotFound)
	if !ok {
		return
	}

	err := models.Restore(p.db.WithContext(c.Request.Context()), &models.Product{}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrProductNotFound)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to restore product")
		return
	}

	p.respondProduct(c, &models.Product{ID: id})
}

// UploadProductImage handles POST /api/v1/products/:id/image (admin only, multipart "image")
func (p *ProductController) UploadProductImage(c *gin.Context) {
	product, ok := p.loadProduct(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the 'image' field")
		return
	}

	ctx := c.Request.Context()
	imageKey, err := p.images.UploadImage(ctx, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// copied by value: the update below writes through product.ImageKey
	var previous string
	if product.ImageKey != nil {
		previous = *product.ImageKey
	}
	if err := p.db.WithContext(ctx).Model(product).Update("image_key", imageKey).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save product image")
		return
	}
	if previous != "" && previous != imageKey {
		if err := p.images.DeleteImage(ctx, previous); err != nil {
			log.Printf("Failed to delete previous image %s: %v", previous, err)
		}
	}

	p.respondProduct(c, product)
}

func (p *ProductController) loadProduct(c *gin.Context) (*models.Product, bool) {
	id, ok := uuidParam(c, "id", services.ErrProductNotFound)
	if !ok {
		return nil, false
	}

	var product models.Product
	err := p.db.WithContext(c.Request.Context()).Scopes(models.Visible).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrProductNotFound)
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch product")
		return nil, false
	}
	return &product, true
}

// respondProduct reloads product and writes it with its image URL
func (p *ProductController) respondProduct(c *gin.Context, product *models.Product) {
	var fresh models.Product
	if err := p.db.WithContext(c.Request.Context()).Where("id = ?", product.ID).First(&fresh).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch product")
		return
	}
	p.attachImageURL(c.Request.Context(), &fresh)
	respondData(c, http.StatusOK, fresh)
}

func (p *ProductController) attachImageURL(ctx context.Context, product *models.Product) {
	if product.ImageKey == nil || *product.ImageKey == "" || p.images == nil {
		return
	}
	url, err := p.images.GetImageURL(ctx, *product.ImageKey)
	if err != nil {
		log.Printf("Failed to build image URL for product %s: %v", product.ID, err)
		return
	}
	product.ImageURL = &url
}
