package service

import (
	"context"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
)

// OverviewFetchFn supplies fresh fundamentals for a ticker.
type OverviewFetchFn func(ctx context.Context) (*dto.CompanyOverview, error)

// OverviewService caches company fundamentals for a day. Prices inside an
// overview are never taken from this cache: they are re-derived from the price
// component on every read, hit or miss.
type OverviewService interface {
	GetOrFetch(ctx context.Context, ticker string, fetchFn OverviewFetchFn) (*dto.CompanyOverview, error)
}

type overviewService struct {
	cfg               *config.Config
	log               *logger.Logger
	overviewCacheRepo repository.OverviewCacheRepository
	priceService      PriceService
	nowFn             func() time.Time
}

func NewOverviewService(
	cfg *config.Config,
	log *logger.Logger,
	overviewCacheRepo repository.OverviewCacheRepository,
	priceService PriceService,
) OverviewService {
	return &overviewService{
		cfg:               cfg,
		log:               log,
		overviewCacheRepo: overviewCacheRepo,
		priceService:      priceService,
		nowFn:             time.Now,
	}
}

func (s *overviewService) GetOrFetch(ctx context.Context, ticker string, fetchFn OverviewFetchFn) (*dto.CompanyOverview, error) {
	lookup := cachedLookup[*dto.CompanyOverview]{
		load: func(ctx context.Context) (*dto.CompanyOverview, time.Time, bool, error) {
			entry, err := s.overviewCacheRepo.Get(ctx, ticker)
			if err != nil {
				return nil, time.Time{}, false, err
			}
			if entry == nil {
				return nil, time.Time{}, false, nil
			}
			return overviewFromEntry(entry), entry.LastUpdated, true, nil
		},
		ttl: func(time.Time) time.Duration {
			return s.cfg.Cache.OverviewTTL
		},
		fetch: func(ctx context.Context) (*dto.CompanyOverview, error) {
			return fetchFn(ctx)
		},
		store: func(ctx context.Context, overview *dto.CompanyOverview, now time.Time) error {
			return s.overviewCacheRepo.Upsert(ctx, overviewToEntry(ticker, overview, now))
		},
		staleFallback: false,
	}

	overview, err := lookup.get(ctx, s.nowFn())
	if err != nil {
		return nil, err
	}

	if err := s.attachLivePrices(ctx, ticker, overview); err != nil {
		return nil, err
	}
	return overview, nil
}

func (s *overviewService) attachLivePrices(ctx context.Context, ticker string, overview *dto.CompanyOverview) error {
	current, previous, err := s.priceService.GetBothPrices(ctx, ticker)
	if err != nil {
		return err
	}

	overview.Price.CurrentPrice = current
	overview.Price.PreviousClose = previous
	if previous != 0 {
		overview.Price.ChangePct = (current - previous) / previous * 100
	}
	return nil
}

func overviewFromEntry(entry *model.OverviewCacheEntry) *dto.CompanyOverview {
	return &dto.CompanyOverview{
		Symbol:           entry.Symbol,
		Name:             entry.Name,
		Sector:           entry.Sector,
		Industry:         entry.Industry,
		Description:      entry.Description,
		MarketCap:        entry.MarketCap,
		RevenueTTM:       entry.RevenueTTM,
		PERatio:          entry.PERatio,
		ForwardPE:        entry.ForwardPE,
		DividendYield:    entry.DividendYield,
		DividendPerShare: entry.DividendPerShare,
		EPS:              entry.EPS,
		ProfitMargin:     entry.ProfitMargin,
		OperatingMargin:  entry.OperatingMargin,
		Price: dto.PriceInformation{
			Week52High:      entry.Week52High,
			Week52Low:       entry.Week52Low,
			MovingAvg50Day:  entry.MovingAvg50Day,
			MovingAvg200Day: entry.MovingAvg200Day,
			Beta:            entry.Beta,
		},
	}
}

func overviewToEntry(ticker string, overview *dto.CompanyOverview, now time.Time) *model.OverviewCacheEntry {
	return &model.OverviewCacheEntry{
		Ticker:           ticker,
		Symbol:           overview.Symbol,
		Name:             overview.Name,
		Sector:           overview.Sector,
		Industry:         overview.Industry,
		Description:      overview.Description,
		MarketCap:        overview.MarketCap,
		RevenueTTM:       overview.RevenueTTM,
		PERatio:          overview.PERatio,
		ForwardPE:        overview.ForwardPE,
		DividendYield:    overview.DividendYield,
		DividendPerShare: overview.DividendPerShare,
		EPS:              overview.EPS,
		ProfitMargin:     overview.ProfitMargin,
		OperatingMargin:  overview.OperatingMargin,
		Week52High:       overview.Price.Week52High,
		Week52Low:        overview.Price.Week52Low,
		MovingAvg50Day:   overview.Price.MovingAvg50Day,
		MovingAvg200Day:  overview.Price.MovingAvg200Day,
		Beta:             overview.Price.Beta,
		LastUpdated:      now,
	}
}
