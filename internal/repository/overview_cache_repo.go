package repository

import (
	"context"
	"errors"
	"time"

	"paper-trading/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OverviewCacheRepository interface {
	Get(ctx context.Context, ticker string) (*model.OverviewCacheEntry, error)
	Upsert(ctx context.Context, entry *model.OverviewCacheEntry) error
	Delete(ctx context.Context, ticker string) error
	Count(ctx context.Context, expiredBefore time.Time) (total int64, expired int64, err error)
}

type overviewCacheRepository struct {
	db *gorm.DB
}

func NewOverviewCacheRepository(db *gorm.DB) OverviewCacheRepository {
	return &overviewCacheRepository{db: db}
}

func (r *overviewCacheRepository) Get(ctx context.Context, ticker string) (*model.OverviewCacheEntry, error) {
	var entry model.OverviewCacheEntry
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *overviewCacheRepository) Upsert(ctx context.Context, entry *model.OverviewCacheEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		UpdateAll: true,
	}).Create(entry).Error
}

func (r *overviewCacheRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).Where("ticker = ?", ticker).Delete(&model.OverviewCacheEntry{}).Error
}

func (r *overviewCacheRepository) Count(ctx context.Context, expiredBefore time.Time) (int64, int64, error) {
	var total, expired int64
	if err := r.db.WithContext(ctx).Model(&model.OverviewCacheEntry{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.OverviewCacheEntry{}).
		Where("last_updated < ?", expiredBefore).Count(&expired).Error; err != nil {
		return 0, 0, err
	}
	return total, expired, nil
}
