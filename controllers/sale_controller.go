package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/services"
)

const dateLayout = "2006-01-02"

// SaleController reports completed sales
type SaleController struct {
	sales    *services.SaleService
	resolver *services.IDResolver
}

// NewSaleController creates a sale controller
func NewSaleController(sales *services.SaleService, resolver *services.IDResolver) *SaleController {
	return &SaleController{sales: sales, resolver: resolver}
}

// ListSales handles GET /api/v1/sales - from and to are inclusive dates
func (s *SaleController) ListSales(c *gin.Context) {
	filter, err := saleFilter(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	sales, err := s.sales.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sales)
}

// GetSalesSummary handles GET /api/v1/sales/summary
func (s *SaleController) GetSalesSummary(c *gin.Context) {
	filter, err := saleFilter(c)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	summary, err := s.sales.Summary(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}

// GetSale handles GET /api/v1/sales/:id - accepts the UUID or its numeric form
func (s *SaleController) GetSale(c *gin.Context) {
	id, ok := s.resolver.SaleID(c.Request.Context(), c.Param("id"))
	if !ok {
		respondServiceError(c, services.ErrSaleNotFound)
		return
	}

	sale, err := s.sales.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sale)
}

func saleFilter(c *gin.Context) (services.SaleFilter, error) {
	var filter services.SaleFilter
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("from must be a date (YYYY-MM-DD)")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("to must be a date (YYYY-MM-DD)")
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return filter, fmt.Errorf("from must not be after to")
	}
	return filter, nil
}
