// Package repository persists revenue aggregates.
package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

// NewStore builds the gorm-backed revenue store.
func NewStore(db *gorm.DB) revenuedomain.Store {
	return &store{db: db}
}

func (s *store) FindByPeriod(ctx context.Context, period revenuedomain.Period) (*revenuedomain.Revenue, error) {
	var row revenuedomain.Revenue
	err := s.db.WithContext(ctx).
		Where("period_start = ?", period.Start()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *store) List(ctx context.Context) ([]revenuedomain.Revenue, error) {
	var rows []revenuedomain.Revenue
	err := s.db.WithContext(ctx).
		Order("period_start ASC").
		Find(&rows).Error
	return rows, err
}

func (s *store) Create(ctx context.Context, row *revenuedomain.Revenue) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *store) Update(ctx context.Context, row *revenuedomain.Revenue) error {
	return s.db.WithContext(ctx).Save(row).Error
}

func (s *store) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&revenuedomain.Revenue{}).Error
}
