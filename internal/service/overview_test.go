package service

import (
	"context"
	"testing"
	"time"

	"paper-trading/internal/dto"
	"paper-trading/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overviewFixture struct {
	svc        *overviewService
	quote      *fakeQuoteRepo
	fetchCalls int
	fetchErr   error
	now        time.Time
}

func newOverviewFixture(t *testing.T, start time.Time) *overviewFixture {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	log := newTestLogger(t)

	f := &overviewFixture{
		quote: &fakeQuoteRepo{price: 100},
		now:   start,
	}
	price := &priceService{
		cfg:             cfg,
		log:             log,
		priceCacheRepo:  repository.NewPriceCacheRepository(db),
		quoteRepo:       f.quote,
		dailySeriesRepo: &fakeDailySeriesRepo{previousClose: 80},
		nowFn:           func() time.Time { return f.now },
	}
	f.svc = &overviewService{
		cfg:               cfg,
		log:               log,
		overviewCacheRepo: repository.NewOverviewCacheRepository(db),
		priceService:      price,
		nowFn:             func() time.Time { return f.now },
	}
	return f
}

func (f *overviewFixture) fetchFn(ctx context.Context) (*dto.CompanyOverview, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &dto.CompanyOverview{
		Symbol:    "AAPL",
		Name:      "Apple Inc",
		Sector:    "Technology",
		MarketCap: 3e12,
		PERatio:   30,
	}, nil
}

func TestOverviewMissFetchesAndCaches(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newOverviewFixture(t, start)
	ctx := context.Background()

	overview, err := f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetchCalls)
	assert.Equal(t, "Apple Inc", overview.Name)
	assert.InDelta(t, 100.0, overview.Price.CurrentPrice, 1e-9)
	assert.InDelta(t, 80.0, overview.Price.PreviousClose, 1e-9)
	assert.InDelta(t, 25.0, overview.Price.ChangePct, 1e-9)

	// Within the day: served from the cache.
	f.now = start.Add(12 * time.Hour)
	overview, err = f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetchCalls)
	assert.InDelta(t, 3e12, overview.MarketCap, 1e-9)
}

func TestOverviewHitRecomputesLivePrices(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newOverviewFixture(t, start)
	ctx := context.Background()

	_, err := f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	require.NoError(t, err)

	// Two hours on, the overview is still cached but the price is not.
	f.now = start.Add(2 * time.Hour)
	f.quote.price = 140
	overview, err := f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetchCalls)
	assert.InDelta(t, 140.0, overview.Price.CurrentPrice, 1e-9)
	assert.InDelta(t, 75.0, overview.Price.ChangePct, 1e-9)
}

func TestOverviewFetchFailurePropagates(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newOverviewFixture(t, start)
	ctx := context.Background()

	_, err := f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	require.NoError(t, err)

	// Stale entry plus a failing fetch: no stale fallback at this layer.
	f.now = start.Add(25 * time.Hour)
	f.fetchErr = assert.AnError
	_, err = f.svc.GetOrFetch(ctx, "AAPL", f.fetchFn)
	assert.Error(t, err)
}
