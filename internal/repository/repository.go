package repository

import (
	"paper-trading/config"
	"paper-trading/pkg/cache"
	"paper-trading/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	PositionRepo      PositionRepository
	LedgerRepo        LedgerRepository
	PriceCacheRepo    PriceCacheRepository
	OverviewCacheRepo OverviewCacheRepository
	AnalysisCacheRepo AnalysisCacheRepository
	QuoteRepo         QuoteRepository
	DailySeriesRepo   DailySeriesRepository
	SignalRepo        SignalRepository
	DocumentRepo      DocumentRepository
	GeminiAIRepo      AIRepository
	UnitOfWork        UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger, inmemoryCache cache.Cache) (*Repository, error) {
	geminiAIRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		PositionRepo:      NewPositionRepository(db),
		LedgerRepo:        NewLedgerRepository(db),
		PriceCacheRepo:    NewPriceCacheRepository(db),
		OverviewCacheRepo: NewOverviewCacheRepository(db),
		AnalysisCacheRepo: NewAnalysisCacheRepository(db),
		QuoteRepo:         NewFinnhubRepository(cfg, log),
		DailySeriesRepo:   NewAlphaVantageRepository(cfg, log),
		SignalRepo:        NewRedditRepository(cfg, log),
		DocumentRepo:      NewSecEdgarRepository(cfg, log, inmemoryCache),
		GeminiAIRepo:      geminiAIRepo,
		UnitOfWork:        NewUnitOfWork(db),
	}, nil
}
