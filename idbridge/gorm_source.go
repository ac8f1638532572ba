package idbridge

import (
	"context"

	"gorm.io/gorm"
)

// GormSource reads candidate ids from a database table.
type GormSource struct {
	DB     *gorm.DB
	Table  string
	Column string
	// OrderBy must give a deterministic order, e.g. "created_at DESC, id ASC"
	OrderBy string
	// Scopes are applied to every candidate query (visibility filters)
	Scopes []func(*gorm.DB) *gorm.DB
}

// NewGormSource returns a source over table.column ordered most recent first.
func NewGormSource(db *gorm.DB, table string, scopes ...func(*gorm.DB) *gorm.DB) *GormSource {
	return &GormSource{
		DB:      db,
		Table:   table,
		Column:  "id",
		OrderBy: "created_at DESC, id ASC",
		Scopes:  scopes,
	}
}

// Candidates runs a single bounded read; any timeout comes from ctx.
func (s *GormSource) Candidates(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	query := s.DB.WithContext(ctx).Table(s.Table).Scopes(s.Scopes...)
	if s.OrderBy != "" {
		query = query.Order(s.OrderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck(s.Column, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
