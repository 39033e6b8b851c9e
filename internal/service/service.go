package service

import (
	"paper-trading/config"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
)

type Service struct {
	PriceService      PriceService
	OverviewService   OverviewService
	AnalysisService   AnalysisService
	PositionService   PositionService
	PortfolioService  PortfolioService
	TradingService    TradingService
	CacheAdminService CacheAdminService
	SchedulerService  SchedulerService
}

func NewService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) *Service {
	priceService := NewPriceService(cfg, log, repo.PriceCacheRepo, repo.QuoteRepo, repo.DailySeriesRepo)
	overviewService := NewOverviewService(cfg, log, repo.OverviewCacheRepo, priceService)
	analysisService := NewAnalysisService(cfg, log, repo.AnalysisCacheRepo, repo.GeminiAIRepo)
	positionService := NewPositionService(cfg, log, repo.PositionRepo, repo.LedgerRepo, repo.UnitOfWork, priceService)
	portfolioService := NewPortfolioService(cfg, log, repo.LedgerRepo, positionService, priceService)
	tradingService := NewTradingService(cfg, log, repo, priceService, overviewService, analysisService, positionService)
	cacheAdminService := NewCacheAdminService(cfg, log, repo.PriceCacheRepo, repo.OverviewCacheRepo, repo.AnalysisCacheRepo)
	schedulerService := NewSchedulerService(cfg, log, tradingService)

	return &Service{
		PriceService:      priceService,
		OverviewService:   overviewService,
		AnalysisService:   analysisService,
		PositionService:   positionService,
		PortfolioService:  portfolioService,
		TradingService:    tradingService,
		CacheAdminService: cacheAdminService,
		SchedulerService:  schedulerService,
	}
}
