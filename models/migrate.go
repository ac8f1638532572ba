package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// uuidColumnTypes holds the UUID column type for dialects without a native
// uuid type. Postgres keeps uuid; sqlite accepts any declared type.
var uuidColumnTypes = map[string]schema.DataType{
	"mysql": "char(36)",
}

// Migrate creates or updates every table for the connected dialect
func Migrate(db *gorm.DB) error {
	if err := AdaptColumnTypes(db); err != nil {
		return err
	}
	return db.AutoMigrate(All()...)
}

// AdaptColumnTypes rewrites the uuid columns of the cached model schemas to
// the dialect's UUID column type. It must run before the first migration on
// db; later statements on the same connection reuse the adapted schemas.
func AdaptColumnTypes(db *gorm.DB) error {
	columnType, ok := uuidColumnTypes[db.Dialector.Name()]
	if !ok {
		return nil
	}

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		for _, field := range stmt.Schema.Fields {
			if strings.EqualFold(string(field.DataType), "uuid") {
				field.DataType = columnType
			}
		}
	}
	return nil
}
