package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Position{},
		&model.Ledger{},
		&model.PriceCacheEntry{},
		&model.OverviewCacheEntry{},
		&model.AnalysisCacheEntry{},
	))
	return db
}

func newPosition(ticker string, closed bool, targetClose time.Time) *model.Position {
	return &model.Position{
		Ticker:          ticker,
		Direction:       model.DirectionLong,
		AmountInvested:  1000,
		EntryPrice:      100,
		Leverage:        1,
		OpenDate:        targetClose.AddDate(0, 0, -30),
		TargetCloseDate: targetClose,
		StopLossPct:     10,
		TakeProfitPct:   25,
		Closed:          closed,
	}
}

func TestPositionRepositoryFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewPositionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newPosition("AAPL", false, now.AddDate(0, 0, 5))))
	require.NoError(t, repo.Create(ctx, newPosition("MSFT", false, now.AddDate(0, 0, -5))))
	require.NoError(t, repo.Create(ctx, newPosition("AAPL", true, now.AddDate(0, 0, 5))))

	open, err := repo.Get(ctx, dto.GetPositionsParam{Closed: utils.ToPointer(false)})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	active, err := repo.Get(ctx, dto.GetPositionsParam{
		Closed:   utils.ToPointer(false),
		ActiveOn: utils.ToPointer(now),
	})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "AAPL", active[0].Ticker)

	byTicker, err := repo.Get(ctx, dto.GetPositionsParam{Tickers: []string{"AAPL"}})
	require.NoError(t, err)
	assert.Len(t, byTicker, 2)
}

func TestPositionRepositoryRequiresFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewPositionRepository(db)

	_, err := repo.Get(context.Background(), dto.GetPositionsParam{})
	assert.Error(t, err)
}

func TestPositionRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewPositionRepository(db)
	ctx := context.Background()

	position := newPosition("AAPL", false, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, position))

	reason := model.CloseReasonStopLoss
	position.Closed = true
	position.CloseReason = &reason
	position.ClosePrice = utils.ToPointer(88.0)
	require.NoError(t, repo.Update(ctx, position))

	stored, err := repo.Get(ctx, dto.GetPositionsParam{IDs: []uint{position.ID}})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Closed)
	assert.Equal(t, model.CloseReasonStopLoss, *stored[0].CloseReason)
}

func TestLedgerRepositorySeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, 10000))
	require.NoError(t, repo.SetAvailable(ctx, 7500))
	require.NoError(t, repo.Seed(ctx, 10000))

	available, err := repo.GetAvailable(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 7500.0, available, 1e-9)
}

func TestPriceCacheRepositoryIndependentFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewPriceCacheRepository(db)
	ctx := context.Background()

	t1 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)

	require.NoError(t, repo.UpsertCurrent(ctx, "AAPL", 100, t1))
	require.NoError(t, repo.UpsertPrevious(ctx, "AAPL", 98, t2))

	entry, err := repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 100.0, *entry.CurrentPrice, 1e-9)
	assert.InDelta(t, 98.0, *entry.PreviousClose, 1e-9)
	assert.True(t, entry.CurrentUpdatedAt.Equal(t1))
	assert.True(t, entry.PreviousUpdatedAt.Equal(t2))

	// Refreshing one field leaves the other untouched.
	t3 := t2.Add(time.Hour)
	require.NoError(t, repo.UpsertCurrent(ctx, "AAPL", 110, t3))
	entry, err = repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 110.0, *entry.CurrentPrice, 1e-9)
	assert.InDelta(t, 98.0, *entry.PreviousClose, 1e-9)
	assert.True(t, entry.PreviousUpdatedAt.Equal(t2))
}

func TestPriceCacheRepositoryMissReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewPriceCacheRepository(db)

	entry, err := repo.Get(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
