package service

import (
	"context"
	"testing"
	"time"

	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePnL(t *testing.T) {
	tests := []struct {
		name      string
		direction model.Direction
		entry     float64
		current   float64
		leverage  int
		want      float64
	}{
		{"long gain with leverage", model.DirectionLong, 100, 110, 2, 20.0},
		{"short gain with leverage", model.DirectionShort, 100, 90, 3, 30.0},
		{"long loss", model.DirectionLong, 100, 94, 1, -6.0},
		{"short loss", model.DirectionShort, 100, 105, 2, -10.0},
		{"flat", model.DirectionLong, 100, 100, 5, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePnL(tt.direction, tt.entry, tt.current, tt.leverage)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

type positionFixture struct {
	svc     PositionService
	ledger  *fakeLedgerRepo
	quote   *fakeQuoteRepo
	posRepo repository.PositionRepository
	now     time.Time
}

func newPositionFixture(t *testing.T) *positionFixture {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	log := newTestLogger(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	ledger := &fakeLedgerRepo{balance: 10000}
	quote := &fakeQuoteRepo{price: 100}
	posRepo := repository.NewPositionRepository(db)

	price := &priceService{
		cfg:             cfg,
		log:             log,
		priceCacheRepo:  repository.NewPriceCacheRepository(db),
		quoteRepo:       quote,
		dailySeriesRepo: &fakeDailySeriesRepo{previousClose: 99},
		nowFn:           func() time.Time { return now },
	}

	svc := NewPositionService(cfg, log, posRepo, ledger, fakeUow{}, price)
	return &positionFixture{svc: svc, ledger: ledger, quote: quote, posRepo: posRepo, now: now}
}

func (f *positionFixture) openPosition(t *testing.T, ticker string, direction model.Direction, entry, stopLoss, takeProfit float64, leverage int, targetClose time.Time) *model.Position {
	t.Helper()

	position := &model.Position{
		Ticker:          ticker,
		Direction:       direction,
		AmountInvested:  1000,
		EntryPrice:      entry,
		Leverage:        leverage,
		OpenDate:        f.now.AddDate(0, 0, -10),
		TargetCloseDate: targetClose,
		StopLossPct:     stopLoss,
		TakeProfitPct:   takeProfit,
	}
	require.NoError(t, f.posRepo.Create(context.Background(), position))
	return position
}

func TestSweepAndCloseStopLossBeatsExpired(t *testing.T) {
	f := newPositionFixture(t)
	// Past target date and 12% under water with a 10% stop: the stop wins.
	f.openPosition(t, "AAPL", model.DirectionLong, 100, 10, 50, 1, f.now.AddDate(0, 0, -2))
	f.quote.price = 88

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	assert.Equal(t, model.CloseReasonStopLoss, closed[0].Reason)
	assert.InDelta(t, -12.0, closed[0].PnLPct, 1e-9)
	assert.InDelta(t, 880.0, closed[0].FinalValue, 1e-9)
	assert.InDelta(t, 10880.0, f.ledger.balance, 1e-9)
}

func TestSweepAndCloseTakeProfit(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "TSLA", model.DirectionShort, 200, 15, 20, 2, f.now.AddDate(0, 0, 5))
	f.quote.price = 176 // short 12% down, 2x leverage -> +24%

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	assert.Equal(t, model.CloseReasonTakeProfit, closed[0].Reason)
	assert.InDelta(t, 24.0, closed[0].PnLPct, 1e-9)
	assert.InDelta(t, 1240.0, closed[0].FinalValue, 1e-9)
}

func TestSweepAndCloseExpired(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "MSFT", model.DirectionLong, 100, 20, 50, 1, f.now.AddDate(0, 0, -1))
	f.quote.price = 102 // +2%, no trigger but past the target date

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	assert.Equal(t, model.CloseReasonExpired, closed[0].Reason)
	assert.InDelta(t, 1020.0, closed[0].FinalValue, 1e-9)
}

func TestSweepAndCloseLeavesUntriggeredOpen(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "NVDA", model.DirectionLong, 100, 20, 50, 1, f.now.AddDate(0, 0, 5))
	f.quote.price = 105

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, closed)

	hasOpen, err := f.svc.HasOpenPosition(context.Background(), "NVDA", f.now)
	require.NoError(t, err)
	assert.True(t, hasOpen)
}

func TestSweepAndCloseIdempotent(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "AAPL", model.DirectionLong, 100, 10, 50, 1, f.now.AddDate(0, 0, 5))
	f.quote.price = 85

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	closed, err = f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestSweepAndCloseSkipsTickerWithoutPrice(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "AAPL", model.DirectionLong, 100, 10, 50, 1, f.now.AddDate(0, 0, -2))
	f.quote.err = assert.AnError

	closed, err := f.svc.SweepAndClose(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, closed)

	hasOpen, err := f.svc.HasOpenPosition(context.Background(), "AAPL", f.now.AddDate(0, 0, -3))
	require.NoError(t, err)
	assert.True(t, hasOpen)
}

func TestHasOpenPositionTransitions(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	hasOpen, err := f.svc.HasOpenPosition(ctx, "AMZN", f.now)
	require.NoError(t, err)
	assert.False(t, hasOpen)

	_, err = f.svc.OpenPosition(ctx, "AMZN", defaultDecision(), 150)
	require.NoError(t, err)

	hasOpen, err = f.svc.HasOpenPosition(ctx, "AMZN", f.now)
	require.NoError(t, err)
	assert.True(t, hasOpen)

	f.quote.price = 100 // -33% on 2x leverage, stop loss fires
	closed, err := f.svc.SweepAndClose(ctx, f.now)
	require.NoError(t, err)
	require.Len(t, closed, 1)

	hasOpen, err = f.svc.HasOpenPosition(ctx, "AMZN", f.now)
	require.NoError(t, err)
	assert.False(t, hasOpen)
}

func TestCountOpenIgnoresExpiredByDate(t *testing.T) {
	f := newPositionFixture(t)
	f.openPosition(t, "AAPL", model.DirectionLong, 100, 10, 50, 1, f.now.AddDate(0, 0, 5))
	f.openPosition(t, "MSFT", model.DirectionLong, 100, 10, 50, 1, f.now.AddDate(0, 0, -3))

	count, err := f.svc.CountOpen(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenPositionRejectsBadDates(t *testing.T) {
	f := newPositionFixture(t)

	decision := defaultDecision()
	decision.StartDate = "not-a-date"
	_, err := f.svc.OpenPosition(context.Background(), "AAPL", decision, 100)
	assert.Error(t, err)
}

func TestOpenPositionStoresDecision(t *testing.T) {
	f := newPositionFixture(t)

	position, err := f.svc.OpenPosition(context.Background(), "GOOG", defaultDecision(), 120)
	require.NoError(t, err)

	stored, err := f.posRepo.Get(context.Background(), dto.GetPositionsParam{IDs: []uint{position.ID}})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Equal(t, "GOOG", stored[0].Ticker)
	assert.Equal(t, model.DirectionLong, stored[0].Direction)
	assert.InDelta(t, 120.0, stored[0].EntryPrice, 1e-9)
	assert.False(t, stored[0].Closed)
	assert.NotEmpty(t, stored[0].DecisionRaw)
}
