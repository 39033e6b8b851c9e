package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
	"paper-trading/pkg/ratelimit"
	"paper-trading/pkg/utils"

	"golang.org/x/sync/errgroup"
)

var errInsufficientFunds = errors.New("amount to invest exceeds available cash")

// TradingService runs the trading pipeline: sweep open positions, scan
// candidate signals, enrich each ticker through the caches, consult the oracle
// and execute at most one trade per run.
type TradingService interface {
	Run(ctx context.Context) (*dto.TradeOutcome, error)
	// RunForUser gates Run behind a per-user cooldown. A rejection is a normal
	// outcome carrying the remaining wait, not an error.
	RunForUser(ctx context.Context, userID string) (*dto.TradeOutcome, error)
}

type tradingService struct {
	cfg             *config.Config
	log             *logger.Logger
	signalRepo      repository.SignalRepository
	documentRepo    repository.DocumentRepository
	dailySeriesRepo repository.DailySeriesRepository
	aiRepo          repository.AIRepository
	ledgerRepo      repository.LedgerRepository
	uow             repository.UnitOfWork
	priceService    PriceService
	overviewService OverviewService
	analysisService AnalysisService
	positionService PositionService
	cooldowns       *ratelimit.CooldownStore
	nowFn           func() time.Time
}

func NewTradingService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	priceService PriceService,
	overviewService OverviewService,
	analysisService AnalysisService,
	positionService PositionService,
) TradingService {
	return &tradingService{
		cfg:             cfg,
		log:             log,
		signalRepo:      repo.SignalRepo,
		documentRepo:    repo.DocumentRepo,
		dailySeriesRepo: repo.DailySeriesRepo,
		aiRepo:          repo.GeminiAIRepo,
		ledgerRepo:      repo.LedgerRepo,
		uow:             repo.UnitOfWork,
		priceService:    priceService,
		overviewService: overviewService,
		analysisService: analysisService,
		positionService: positionService,
		cooldowns:       ratelimit.NewCooldownStore(cfg.Trading.TradeCooldown),
		nowFn:           time.Now,
	}
}

func (s *tradingService) RunForUser(ctx context.Context, userID string) (*dto.TradeOutcome, error) {
	now := s.nowFn()
	if remaining := s.cooldowns.Remaining(userID, now); remaining > 0 {
		waitMinutes := int(math.Ceil(remaining.Minutes()))
		return &dto.TradeOutcome{
			Status:      dto.TradeStatusRateLimited,
			Explanation: fmt.Sprintf("Please wait %d minutes before requesting another trade.", waitMinutes),
			Wait:        remaining,
			WaitMinutes: waitMinutes,
		}, nil
	}

	s.cooldowns.Touch(userID, now)
	return s.Run(ctx)
}

func (s *tradingService) Run(ctx context.Context) (*dto.TradeOutcome, error) {
	now := s.nowFn()

	closed, err := s.positionService.SweepAndClose(ctx, now)
	if err != nil {
		// A failed sweep aborts the run before any trade is attempted.
		return nil, fmt.Errorf("sweep failed: %w", err)
	}

	signals, err := s.signalRepo.FetchCandidates(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch candidate signals", logger.ErrorField(err))
		return &dto.TradeOutcome{
			Status:      dto.TradeStatusNoTrade,
			Explanation: "No trade today: the signal feed could not be read.",
			Closed:      closed,
		}, nil
	}

	if len(signals) > s.cfg.Trading.MaxSignalsPerRun {
		signals = signals[:s.cfg.Trading.MaxSignalsPerRun]
	}

	for _, signal := range signals {
		outcome := s.processSignal(ctx, signal, now)
		if outcome != nil {
			outcome.Closed = closed
			return outcome, nil
		}
	}

	return &dto.TradeOutcome{
		Status:      dto.TradeStatusNoTrade,
		Explanation: "No trade today: nothing in the current signals was worth acting on.",
		Closed:      closed,
	}, nil
}

// processSignal tries every ticker a signal mentions and returns an executed
// outcome for the first trade that goes through, or nil if none did. Errors
// are confined to the ticker they occurred on.
func (s *tradingService) processSignal(ctx context.Context, signal dto.Signal, now time.Time) *dto.TradeOutcome {
	tickers, err := s.aiRepo.ExtractTickers(ctx, signal)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to extract tickers from signal",
			logger.StringField("title", signal.Title),
			logger.ErrorField(err),
		)
		return nil
	}
	if len(tickers) == 0 {
		return nil
	}

	if len(tickers) > s.cfg.Trading.MaxTickersPerSignal {
		tickers = tickers[:s.cfg.Trading.MaxTickersPerSignal]
	}

	for _, ticker := range tickers {
		outcome, err := s.processTicker(ctx, signal, ticker, now)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping ticker",
				logger.StringField("ticker", ticker),
				logger.ErrorField(err),
			)
			continue
		}
		if outcome != nil {
			return outcome
		}
	}
	return nil
}

func (s *tradingService) processTicker(ctx context.Context, signal dto.Signal, ticker string, now time.Time) (*dto.TradeOutcome, error) {
	hasOpen, err := s.positionService.HasOpenPosition(ctx, ticker, now)
	if err != nil {
		return nil, err
	}
	if hasOpen {
		s.log.DebugContext(ctx, "Position already open", logger.StringField("ticker", ticker))
		return nil, nil
	}

	sections, err := s.documentRepo.FetchSections(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if !sections.Complete() {
		s.log.DebugContext(ctx, "Filing sections incomplete", logger.StringField("ticker", ticker))
		return nil, nil
	}

	var (
		analysis *dto.CompanyAnalysis
		overview *dto.CompanyOverview
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analysis, err = s.analysisService.GetOrGenerate(gCtx, ticker, sections)
		return err
	})
	g.Go(func() error {
		var err error
		overview, err = s.overviewService.GetOrFetch(gCtx, ticker, func(ctx context.Context) (*dto.CompanyOverview, error) {
			return s.dailySeriesRepo.CompanyFundamentals(ctx, ticker)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sentiment, err := s.aiRepo.JudgeSentiment(ctx, signal, analysis.FullAnalysis, overview)
	if err != nil {
		return nil, err
	}
	if sentiment.Label == dto.SentimentNeutral {
		s.log.InfoContext(ctx, "Neutral sentiment, no trade",
			logger.StringField("ticker", ticker),
		)
		return nil, nil
	}

	available, err := s.ledgerRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	decision, err := s.aiRepo.DecideTrade(ctx, sentiment, available)
	if err != nil {
		return nil, err
	}

	entryPrice, err := s.priceService.GetCurrentPrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := s.executeTrade(ctx, ticker, decision, entryPrice); err != nil {
		if errors.Is(err, errInsufficientFunds) {
			s.log.WarnContext(ctx, "Rejected trade exceeding available cash",
				logger.StringField("ticker", ticker),
				logger.Float64Field("amount", decision.AmountToInvest),
			)
			return nil, nil
		}
		return nil, err
	}

	explanation, err := s.aiRepo.ExplainTrade(ctx, decision, ticker)
	if err != nil {
		explanation = fmt.Sprintf("Opened a %s position on %s for %s at %dx leverage. %s",
			decision.Direction, ticker, utils.FormatMoney(decision.AmountToInvest), decision.Leverage, decision.Summary)
	}

	s.log.InfoContext(ctx, "Executed trade",
		logger.StringField("ticker", ticker),
		logger.StringField("direction", string(decision.Direction)),
		logger.Float64Field("amount", decision.AmountToInvest),
	)

	return &dto.TradeOutcome{
		Status:      dto.TradeStatusExecuted,
		Explanation: explanation,
	}, nil
}

// executeTrade opens the position and debits the ledger in one transaction.
// The balance is re-read under lock right before the write, so a sweep that
// credited cash earlier in the run is accounted for.
func (s *tradingService) executeTrade(ctx context.Context, ticker string, decision *dto.TradeDecision, entryPrice float64) error {
	return s.uow.Run(func(opts ...utils.DBOption) error {
		available, err := s.ledgerRepo.GetAvailableForUpdate(ctx, opts...)
		if err != nil {
			return err
		}
		if decision.AmountToInvest > available {
			return errInsufficientFunds
		}

		if _, err := s.positionService.OpenPosition(ctx, ticker, decision, entryPrice, opts...); err != nil {
			return err
		}

		return s.ledgerRepo.SetAvailable(ctx, available-decision.AmountToInvest, opts...)
	})
}
