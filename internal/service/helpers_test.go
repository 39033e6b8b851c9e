package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/pkg/logger"
	"paper-trading/pkg/utils"

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

func newTestConfig() *config.Config {
	return &config.Config{
		Trading: config.Trading{
			StartingBalance:     10000,
			MaxSignalsPerRun:    5,
			MaxTickersPerSignal: 3,
			TradeCooldown:       time.Hour,
			MarketOpenHour:      9,
			MarketCloseHour:     16,
		},
		Cache: config.Cache{
			CurrentPriceTTL:  time.Hour,
			OffHoursPriceTTL: 24 * time.Hour,
			PreviousCloseTTL: 24 * time.Hour,
			OverviewTTL:      24 * time.Hour,
			AnalysisTTL:      30 * 24 * time.Hour,
		},
	}
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

// fakeLedgerRepo keeps the balance in memory. SQLite cannot parse the row
// lock the real repo takes, and the services only care about the numbers.
type fakeLedgerRepo struct {
	balance float64
	reads   int
	writes  int
}

func (f *fakeLedgerRepo) Seed(ctx context.Context, startingBalance float64) error {
	f.balance = startingBalance
	return nil
}

func (f *fakeLedgerRepo) GetAvailable(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	f.reads++
	return f.balance, nil
}

func (f *fakeLedgerRepo) GetAvailableForUpdate(ctx context.Context, opts ...utils.DBOption) (float64, error) {
	f.reads++
	return f.balance, nil
}

func (f *fakeLedgerRepo) SetAvailable(ctx context.Context, amount float64, opts ...utils.DBOption) error {
	f.writes++
	f.balance = amount
	return nil
}

// fakeUow runs the callback without a transaction.
type fakeUow struct{}

func (fakeUow) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

type fakeQuoteRepo struct {
	price float64
	err   error
	calls int
}

func (f *fakeQuoteRepo) CurrentQuote(ctx context.Context, ticker string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.price, nil
}

type fakeDailySeriesRepo struct {
	previousClose float64
	overview      *dto.CompanyOverview
	err           error
	calls         int
}

func (f *fakeDailySeriesRepo) PreviousClose(ctx context.Context, ticker string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.previousClose, nil
}

func (f *fakeDailySeriesRepo) CompanyFundamentals(ctx context.Context, ticker string) (*dto.CompanyOverview, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.overview != nil {
		return f.overview, nil
	}
	return &dto.CompanyOverview{Symbol: ticker, Name: ticker + " Inc"}, nil
}

type fakeSignalRepo struct {
	signals []dto.Signal
	err     error
}

func (f *fakeSignalRepo) FetchCandidates(ctx context.Context) ([]dto.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

type fakeDocumentRepo struct {
	sections *dto.FilingSections
	err      error
}

func (f *fakeDocumentRepo) FetchSections(ctx context.Context, ticker string) (*dto.FilingSections, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sections != nil {
		return f.sections, nil
	}
	return &dto.FilingSections{Business: "b", RiskFactors: "r", MDNA: "m"}, nil
}

type fakeAIRepo struct {
	tickers       []string
	sentiment     *dto.Sentiment
	decision      *dto.TradeDecision
	decisionErr   error
	extractCalls  int
	explainCalls  int
	decideCalls   int
	summarizeErr  error
	analysisCalls int
}

func (f *fakeAIRepo) ExtractTickers(ctx context.Context, signal dto.Signal) ([]string, error) {
	f.extractCalls++
	return f.tickers, nil
}

func (f *fakeAIRepo) SummarizeBusiness(ctx context.Context, business string) (string, error) {
	f.analysisCalls++
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return "business overview", nil
}

func (f *fakeAIRepo) SummarizeRisks(ctx context.Context, riskFactors, businessOverview string) (string, error) {
	f.analysisCalls++
	return "risk overview", nil
}

func (f *fakeAIRepo) ComposeAnalysis(ctx context.Context, mdna, businessOverview, riskOverview string) (string, error) {
	f.analysisCalls++
	return "full analysis", nil
}

func (f *fakeAIRepo) JudgeSentiment(ctx context.Context, signal dto.Signal, fullAnalysis string, overview *dto.CompanyOverview) (*dto.Sentiment, error) {
	if f.sentiment != nil {
		return f.sentiment, nil
	}
	return &dto.Sentiment{Label: dto.SentimentBullish, Reasoning: "looks good"}, nil
}

func (f *fakeAIRepo) DecideTrade(ctx context.Context, sentiment *dto.Sentiment, availableCash float64) (*dto.TradeDecision, error) {
	f.decideCalls++
	if f.decisionErr != nil {
		return nil, f.decisionErr
	}
	if f.decision != nil {
		return f.decision, nil
	}
	return defaultDecision(), nil
}

func (f *fakeAIRepo) ExplainTrade(ctx context.Context, decision *dto.TradeDecision, ticker string) (string, error) {
	f.explainCalls++
	return fmt.Sprintf("opened a trade on %s", ticker), nil
}

func defaultDecision() *dto.TradeDecision {
	return &dto.TradeDecision{
		Direction:      model.DirectionLong,
		AmountToInvest: 1000,
		Leverage:       2,
		StartDate:      "2026-08-28",
		EndDate:        "2026-09-28",
		StopLossPct:    10,
		TakeProfitPct:  25,
		Summary:        "momentum play",
		Confidence:     0.7,
	}
}
