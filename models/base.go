package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a new record a random UUID unless one was set by the caller
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Visible hides soft-deleted rows; every read of a tombstoned model applies it
func Visible(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// Deleted selects only soft-deleted rows, used by restore flows
func Deleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NOT NULL")
}

// SoftDelete sets the tombstone on a visible row of model's table.
// It returns gorm.ErrRecordNotFound when no visible row matches id.
func SoftDelete(db *gorm.DB, model interface{}, id uuid.UUID) error {
	result := db.Model(model).Scopes(Visible).Where("id = ?", id).Update("deleted_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore clears the tombstone on a deleted row of model's table.
// It returns gorm.ErrRecordNotFound when no deleted row matches id.
func Restore(db *gorm.DB, model interface{}, id uuid.UUID) error {
	result := db.Model(model).Scopes(Deleted).Where("id = ?", id).Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
