package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Defaults(t *testing.T) {
	settings := NewSettingsService(setupTestDB(t))
	ctx := context.Background()

	all, err := settings.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings, all)

	rate, err := settings.TaxRate(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(rate))

	level, err := settings.LowStockLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, level)
}

func TestSettingsService_Upsert(t *testing.T) {
	settings := NewSettingsService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, settings.Upsert(ctx, map[string]string{
		models.SettingShopName: "Kopi Kita",
		models.SettingTaxRate:  "11.5",
	}))
	require.NoError(t, settings.Upsert(ctx, map[string]string{models.SettingShopName: "Kopi Kita 2"}))

	name, err := settings.Get(ctx, models.SettingShopName)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Kita 2", name)

	rate, err := settings.TaxRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "11.5", rate.String())

	all, err := settings.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Kita 2", all[models.SettingShopName])
	assert.Equal(t, models.DefaultSettings[models.SettingCurrency], all[models.SettingCurrency])
}

func TestSettingsService_UpsertValidation(t *testing.T) {
	settings := NewSettingsService(setupTestDB(t))

	tests := []struct {
		name   string
		values map[string]string
	}{
		{"empty", map[string]string{}},
		{"unknown key", map[string]string{"theme": "dark"}},
		{"tax rate not a number", map[string]string{models.SettingTaxRate: "ten"}},
		{"tax rate negative", map[string]string{models.SettingTaxRate: "-1"}},
		{"tax rate above 100", map[string]string{models.SettingTaxRate: "101"}},
		{"low stock negative", map[string]string{models.SettingLowStockLevel: "-3"}},
		{"empty shop name", map[string]string{models.SettingShopName: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := settings.Upsert(context.Background(), tt.values)
			assert.ErrorIs(t, err, ErrInvalidSetting)
		})
	}
}
