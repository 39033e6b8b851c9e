package repository

import (
	"context"
	"errors"
	"time"

	"paper-trading/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisCacheRepository interface {
	Get(ctx context.Context, ticker string) (*model.AnalysisCacheEntry, error)
	Upsert(ctx context.Context, entry *model.AnalysisCacheEntry) error
	Delete(ctx context.Context, ticker string) error
	Count(ctx context.Context, expiredBefore time.Time) (total int64, expired int64, err error)
}

type analysisCacheRepository struct {
	db *gorm.DB
}

func NewAnalysisCacheRepository(db *gorm.DB) AnalysisCacheRepository {
	return &analysisCacheRepository{db: db}
}

func (r *analysisCacheRepository) Get(ctx context.Context, ticker string) (*model.AnalysisCacheEntry, error) {
	var entry model.AnalysisCacheEntry
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert writes all three analysis texts and the stamp in one statement, so a
// partial generation never reaches the cache.
func (r *analysisCacheRepository) Upsert(ctx context.Context, entry *model.AnalysisCacheEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		UpdateAll: true,
	}).Create(entry).Error
}

func (r *analysisCacheRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).Where("ticker = ?", ticker).Delete(&model.AnalysisCacheEntry{}).Error
}

func (r *analysisCacheRepository) Count(ctx context.Context, expiredBefore time.Time) (int64, int64, error) {
	var total, expired int64
	if err := r.db.WithContext(ctx).Model(&model.AnalysisCacheEntry{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.AnalysisCacheEntry{}).
		Where("last_updated < ?", expiredBefore).Count(&expired).Error; err != nil {
		return 0, 0, err
	}
	return total, expired, nil
}
