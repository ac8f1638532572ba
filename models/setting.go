package models

import "time"

// Known setting keys
const (
	SettingShopName      = "shop_name"
	SettingTaxRate       = "tax_rate"
	SettingCurrency      = "currency"
	SettingReceiptFooter = "receipt_footer"
	SettingLowStockLevel = "low_stock_level"
)

// DefaultSettings are served for keys that were never stored
var DefaultSettings = map[string]string{
	SettingShopName:      "Café POS",
	SettingTaxRate:       "10",
	SettingCurrency:      "IDR",
	SettingReceiptFooter: "Thank you for visiting!",
	SettingLowStockLevel: "5",
}

// Setting is a single shop-wide key/value configuration entry
type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}

// ValidSettingKey reports whether key is a known setting
func ValidSettingKey(key string) bool {
	_, ok := DefaultSettings[key]
	return ok
}
