package service

import (
	"context"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
)

// CacheAdminService exposes maintenance views over the persistent caches.
type CacheAdminService interface {
	Stats(ctx context.Context) (*dto.CacheStats, error)
	// ClearTicker drops every cached row for a ticker, forcing fresh fetches
	// on the next run.
	ClearTicker(ctx context.Context, ticker string) error
}

type cacheAdminService struct {
	cfg               *config.Config
	log               *logger.Logger
	priceCacheRepo    repository.PriceCacheRepository
	overviewCacheRepo repository.OverviewCacheRepository
	analysisCacheRepo repository.AnalysisCacheRepository
	nowFn             func() time.Time
}

func NewCacheAdminService(
	cfg *config.Config,
	log *logger.Logger,
	priceCacheRepo repository.PriceCacheRepository,
	overviewCacheRepo repository.OverviewCacheRepository,
	analysisCacheRepo repository.AnalysisCacheRepository,
) CacheAdminService {
	return &cacheAdminService{
		cfg:               cfg,
		log:               log,
		priceCacheRepo:    priceCacheRepo,
		overviewCacheRepo: overviewCacheRepo,
		analysisCacheRepo: analysisCacheRepo,
		nowFn:             time.Now,
	}
}

func (s *cacheAdminService) Stats(ctx context.Context) (*dto.CacheStats, error) {
	now := s.nowFn()

	priceTotal, withPrevious, err := s.priceCacheRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	overviewTotal, overviewExpired, err := s.overviewCacheRepo.Count(ctx, now.Add(-s.cfg.Cache.OverviewTTL))
	if err != nil {
		return nil, err
	}

	analysisTotal, analysisExpired, err := s.analysisCacheRepo.Count(ctx, now.Add(-s.cfg.Cache.AnalysisTTL))
	if err != nil {
		return nil, err
	}

	return &dto.CacheStats{
		PriceEntries:      priceTotal,
		PriceWithPrevious: withPrevious,
		OverviewEntries:   overviewTotal,
		OverviewExpired:   overviewExpired,
		AnalysisEntries:   analysisTotal,
		AnalysisExpired:   analysisExpired,
	}, nil
}

func (s *cacheAdminService) ClearTicker(ctx context.Context, ticker string) error {
	if err := s.priceCacheRepo.Delete(ctx, ticker); err != nil {
		return err
	}
	if err := s.overviewCacheRepo.Delete(ctx, ticker); err != nil {
		return err
	}
	if err := s.analysisCacheRepo.Delete(ctx, ticker); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "Cleared cached data", logger.StringField("ticker", ticker))
	return nil
}
