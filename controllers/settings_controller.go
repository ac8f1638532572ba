package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/services"
)

// SettingsController reads and writes shop settings
type SettingsController struct {
	settings *services.SettingsService
}

// NewSettingsController creates a settings controller
func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{settings: settings}
}

// GetSettings handles GET /api/v1/settings
func (s *SettingsController) GetSettings(c *gin.Context) {
	values, err := s.settings.All(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, values)
}

// UpdateSettings handles PUT /api/v1/settings (admin only) - body is a map of key to value
func (s *SettingsController) UpdateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		respondValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.settings.Upsert(ctx, values); err != nil {
		respondServiceError(c, err)
		return
	}

	all, err := s.settings.All(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, all)
}
