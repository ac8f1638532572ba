package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsService reads and upserts shop-wide settings
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a settings service over db
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// All returns every known setting, falling back to defaults for unset keys
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	var stored []models.Setting
	if err := s.db.WithContext(ctx).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]string, len(models.DefaultSettings))
	for key, value := range models.DefaultSettings {
		values[key] = value
	}
	for _, setting := range stored {
		values[setting.Key] = setting.Value
	}
	return values, nil
}

// Get returns a single setting value
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("setting_key = ?", key).Limit(1).Find(&setting).Error
	if err != nil {
		return "", fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	if setting.Key == "" {
		return models.DefaultSettings[key], nil
	}
	return setting.Value, nil
}

// Upsert validates and stores values, inserting or overwriting each key
func (s *SettingsService) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return withMessage(ErrInvalidSetting, "No settings provided")
	}

	rows := make([]models.Setting, 0, len(values))
	for key, value := range values {
		if err := validateSetting(key, value); err != nil {
			return err
		}
		rows = append(rows, models.Setting{Key: key, Value: value})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// TaxRate returns the tax percentage applied to order subtotals
func (s *SettingsService) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	value, err := s.Get(ctx, models.SettingTaxRate)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		log.Printf("Stored tax_rate %q is invalid, using 0", value)
		return decimal.Zero, nil
	}
	return rate, nil
}

// LowStockLevel returns the stock level at or below which staff are notified
func (s *SettingsService) LowStockLevel(ctx context.Context) (int, error) {
	value, err := s.Get(ctx, models.SettingLowStockLevel)
	if err != nil {
		return 0, err
	}
	level, err := strconv.Atoi(value)
	if err != nil {
		return 0, nil
	}
	return level, nil
}

func validateSetting(key, value string) error {
	if !models.ValidSettingKey(key) {
		return withMessage(ErrInvalidSetting, "Unknown setting %q", key)
	}

	switch key {
	case models.SettingTaxRate:
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return withMessage(ErrInvalidSetting, "tax_rate must be a number between 0 and 100")
		}
	case models.SettingLowStockLevel:
		if n, err := strconv.Atoi(value); err != nil || n < 0 {
			return withMessage(ErrInvalidSetting, "low_stock_level must be a non-negative integer")
		}
	case models.SettingShopName, models.SettingCurrency:
		if value == "" {
			return withMessage(ErrInvalidSetting, "%s must not be empty", key)
		}
	}
	return nil
}
