package service

import (
	"context"
	"sync"
	"time"

	"paper-trading/config"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// PriceService serves current and previous-close prices through the persistent
// price cache. The two fields expire independently and a failed refresh falls
// back to the stale stored value when one exists.
type PriceService interface {
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetPreviousClose(ctx context.Context, ticker string) (float64, error)
	GetBothPrices(ctx context.Context, ticker string) (current, previous float64, err error)
	// GetCurrentPrices resolves prices for many tickers at once. Tickers whose
	// price cannot be obtained are absent from the result.
	GetCurrentPrices(ctx context.Context, tickers []string) map[string]float64
}

type priceService struct {
	cfg             *config.Config
	log             *logger.Logger
	priceCacheRepo  repository.PriceCacheRepository
	quoteRepo       repository.QuoteRepository
	dailySeriesRepo repository.DailySeriesRepository
	nowFn           func() time.Time
}

func NewPriceService(
	cfg *config.Config,
	log *logger.Logger,
	priceCacheRepo repository.PriceCacheRepository,
	quoteRepo repository.QuoteRepository,
	dailySeriesRepo repository.DailySeriesRepository,
) PriceService {
	return &priceService{
		cfg:             cfg,
		log:             log,
		priceCacheRepo:  priceCacheRepo,
		quoteRepo:       quoteRepo,
		dailySeriesRepo: dailySeriesRepo,
		nowFn:           time.Now,
	}
}

// currentPriceTTL shortens the validity window while the market is open, since
// that is when the price actually moves.
func (s *priceService) currentPriceTTL(now time.Time) time.Duration {
	hour := now.Hour()
	if hour >= s.cfg.Trading.MarketOpenHour && hour < s.cfg.Trading.MarketCloseHour {
		return s.cfg.Cache.CurrentPriceTTL
	}
	return s.cfg.Cache.OffHoursPriceTTL
}

func (s *priceService) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	lookup := cachedLookup[float64]{
		load: func(ctx context.Context) (float64, time.Time, bool, error) {
			entry, err := s.priceCacheRepo.Get(ctx, ticker)
			if err != nil {
				return 0, time.Time{}, false, err
			}
			if entry == nil || entry.CurrentPrice == nil || entry.CurrentUpdatedAt == nil {
				return 0, time.Time{}, false, nil
			}
			return *entry.CurrentPrice, *entry.CurrentUpdatedAt, true, nil
		},
		ttl: s.currentPriceTTL,
		fetch: func(ctx context.Context) (float64, error) {
			return s.quoteRepo.CurrentQuote(ctx, ticker)
		},
		store: func(ctx context.Context, price float64, now time.Time) error {
			return s.priceCacheRepo.UpsertCurrent(ctx, ticker, price, now)
		},
		staleFallback: true,
	}
	return lookup.get(ctx, s.nowFn())
}

func (s *priceService) GetPreviousClose(ctx context.Context, ticker string) (float64, error) {
	lookup := cachedLookup[float64]{
		load: func(ctx context.Context) (float64, time.Time, bool, error) {
			entry, err := s.priceCacheRepo.Get(ctx, ticker)
			if err != nil {
				return 0, time.Time{}, false, err
			}
			if entry == nil || entry.PreviousClose == nil || entry.PreviousUpdatedAt == nil {
				return 0, time.Time{}, false, nil
			}
			return *entry.PreviousClose, *entry.PreviousUpdatedAt, true, nil
		},
		ttl: func(time.Time) time.Duration {
			return s.cfg.Cache.PreviousCloseTTL
		},
		fetch: func(ctx context.Context) (float64, error) {
			return s.dailySeriesRepo.PreviousClose(ctx, ticker)
		},
		store: func(ctx context.Context, price float64, now time.Time) error {
			return s.priceCacheRepo.UpsertPrevious(ctx, ticker, price, now)
		},
		staleFallback: true,
	}
	return lookup.get(ctx, s.nowFn())
}

func (s *priceService) GetBothPrices(ctx context.Context, ticker string) (float64, float64, error) {
	var current, previous float64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.GetCurrentPrice(gCtx, ticker)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.GetPreviousClose(gCtx, ticker)
		return err
	})

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return current, previous, nil
}

func (s *priceService) GetCurrentPrices(ctx context.Context, tickers []string) map[string]float64 {
	seen := make(map[string]struct{}, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if _, ok := seen[ticker]; ok {
			continue
		}
		seen[ticker] = struct{}{}
		unique = append(unique, ticker)
	}

	var mu sync.Mutex
	prices := make(map[string]float64, len(unique))

	g, gCtx := errgroup.WithContext(ctx)
	for _, ticker := range unique {
		ticker := ticker
		g.Go(func() error {
			price, err := s.GetCurrentPrice(gCtx, ticker)
			if err != nil {
				s.log.WarnContext(gCtx, "Skipping ticker without a price",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err),
				)
				return nil
			}
			mu.Lock()
			prices[ticker] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return prices
}
