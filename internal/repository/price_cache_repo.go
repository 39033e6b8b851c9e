package repository

import (
	"context"
	"errors"
	"time"

	"paper-trading/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceCacheRepository interface {
	// Get returns the cached row for a ticker, or nil if none exists.
	Get(ctx context.Context, ticker string) (*model.PriceCacheEntry, error)
	UpsertCurrent(ctx context.Context, ticker string, price float64, at time.Time) error
	UpsertPrevious(ctx context.Context, ticker string, price float64, at time.Time) error
	Delete(ctx context.Context, ticker string) error
	Count(ctx context.Context) (total int64, withPrevious int64, err error)
}

type priceCacheRepository struct {
	db *gorm.DB
}

func NewPriceCacheRepository(db *gorm.DB) PriceCacheRepository {
	return &priceCacheRepository{db: db}
}

func (r *priceCacheRepository) Get(ctx context.Context, ticker string) (*model.PriceCacheEntry, error) {
	var entry model.PriceCacheEntry
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *priceCacheRepository) UpsertCurrent(ctx context.Context, ticker string, price float64, at time.Time) error {
	entry := model.PriceCacheEntry{
		Ticker:           ticker,
		CurrentPrice:     &price,
		CurrentUpdatedAt: &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_price", "current_updated_at"}),
	}).Create(&entry).Error
}

func (r *priceCacheRepository) UpsertPrevious(ctx context.Context, ticker string, price float64, at time.Time) error {
	entry := model.PriceCacheEntry{
		Ticker:            ticker,
		PreviousClose:     &price,
		PreviousUpdatedAt: &at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"previous_close", "previous_updated_at"}),
	}).Create(&entry).Error
}

func (r *priceCacheRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).Where("ticker = ?", ticker).Delete(&model.PriceCacheEntry{}).Error
}

func (r *priceCacheRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, withPrevious int64
	if err := r.db.WithContext(ctx).Model(&model.PriceCacheEntry{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.PriceCacheEntry{}).
		Where("previous_close IS NOT NULL").Count(&withPrevious).Error; err != nil {
		return 0, 0, err
	}
	return total, withPrevious, nil
}
