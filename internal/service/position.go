package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/model"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
	"paper-trading/pkg/utils"
)

// PositionService owns the position state machine. A position moves from open
// to closed exactly once and is never deleted.
type PositionService interface {
	// SweepAndClose checks every open position against its closure triggers and
	// closes the ones that fire, crediting the ledger with each final value.
	SweepAndClose(ctx context.Context, now time.Time) ([]dto.ClosedPosition, error)
	// OpenPosition inserts the new row. It does not touch the ledger; the
	// caller debits cash as an explicit separate step.
	OpenPosition(ctx context.Context, ticker string, decision *dto.TradeDecision, entryPrice float64, opts ...utils.DBOption) (*model.Position, error)
	HasOpenPosition(ctx context.Context, ticker string, asOf time.Time) (bool, error)
	CountOpen(ctx context.Context, asOf time.Time) (int, error)
	GetOpenPositions(ctx context.Context) ([]model.Position, error)
}

type positionService struct {
	cfg          *config.Config
	log          *logger.Logger
	positionRepo repository.PositionRepository
	ledgerRepo   repository.LedgerRepository
	uow          repository.UnitOfWork
	priceService PriceService
}

func NewPositionService(
	cfg *config.Config,
	log *logger.Logger,
	positionRepo repository.PositionRepository,
	ledgerRepo repository.LedgerRepository,
	uow repository.UnitOfWork,
	priceService PriceService,
) PositionService {
	return &positionService{
		cfg:          cfg,
		log:          log,
		positionRepo: positionRepo,
		ledgerRepo:   ledgerRepo,
		uow:          uow,
		priceService: priceService,
	}
}

// CalculatePnL returns the signed profit-and-loss percentage of a position at
// the given price, amplified by leverage.
func CalculatePnL(direction model.Direction, entryPrice, currentPrice float64, leverage int) float64 {
	if direction == model.DirectionLong {
		return (currentPrice - entryPrice) / entryPrice * 100 * float64(leverage)
	}
	return (entryPrice - currentPrice) / entryPrice * 100 * float64(leverage)
}

// closeTrigger reports the closure reason for a position, if any. Stop loss
// wins over take profit, and both win over date expiry.
func closeTrigger(position *model.Position, pnlPct float64, now time.Time) (model.CloseReason, bool) {
	switch {
	case pnlPct <= -position.StopLossPct:
		return model.CloseReasonStopLoss, true
	case pnlPct >= position.TakeProfitPct:
		return model.CloseReasonTakeProfit, true
	case utils.DateOnly(position.TargetCloseDate).Before(utils.DateOnly(now)):
		return model.CloseReasonExpired, true
	default:
		return "", false
	}
}

func (s *positionService) SweepAndClose(ctx context.Context, now time.Time) ([]dto.ClosedPosition, error) {
	positions, err := s.positionRepo.Get(ctx, dto.GetPositionsParam{
		Closed: utils.ToPointer(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load open positions: %w", err)
	}
	if len(positions) == 0 {
		return []dto.ClosedPosition{}, nil
	}

	tickers := make([]string, 0, len(positions))
	for _, position := range positions {
		tickers = append(tickers, position.Ticker)
	}
	prices := s.priceService.GetCurrentPrices(ctx, tickers)

	closed := []dto.ClosedPosition{}
	for i := range positions {
		position := positions[i]

		currentPrice, ok := prices[position.Ticker]
		if !ok {
			// No forced closure on missing data; try again next sweep.
			continue
		}

		pnlPct := CalculatePnL(position.Direction, position.EntryPrice, currentPrice, position.Leverage)
		reason, triggered := closeTrigger(&position, pnlPct, now)
		if !triggered {
			continue
		}

		summary, err := s.closePosition(ctx, &position, reason, currentPrice, pnlPct, now)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to close position",
				logger.IntField("position_id", int(position.ID)),
				logger.StringField("ticker", position.Ticker),
				logger.ErrorField(err),
			)
			continue
		}
		closed = append(closed, *summary)

		s.log.InfoContext(ctx, "Closed position",
			logger.StringField("ticker", position.Ticker),
			logger.StringField("reason", string(reason)),
			logger.Float64Field("pnl_pct", pnlPct),
		)
	}

	return closed, nil
}

// closePosition persists the closure and credits the ledger in one
// transaction. The ledger is re-read under lock so that each close in a sweep
// adds to the latest balance.
func (s *positionService) closePosition(ctx context.Context, position *model.Position, reason model.CloseReason, currentPrice, pnlPct float64, now time.Time) (*dto.ClosedPosition, error) {
	finalValue := position.AmountInvested * (1 + pnlPct/100)

	err := s.uow.Run(func(opts ...utils.DBOption) error {
		available, err := s.ledgerRepo.GetAvailableForUpdate(ctx, opts...)
		if err != nil {
			return err
		}

		position.Closed = true
		position.CloseReason = &reason
		position.ClosePrice = &currentPrice
		position.CloseDate = utils.ToPointer(utils.DateOnly(now))
		position.FinalValue = &finalValue
		if err := s.positionRepo.Update(ctx, position, opts...); err != nil {
			return err
		}

		return s.ledgerRepo.SetAvailable(ctx, available+finalValue, opts...)
	})
	if err != nil {
		return nil, err
	}

	return &dto.ClosedPosition{
		PositionID: position.ID,
		Ticker:     position.Ticker,
		Direction:  position.Direction,
		Reason:     reason,
		EntryPrice: position.EntryPrice,
		ClosePrice: currentPrice,
		Leverage:   position.Leverage,
		Invested:   position.AmountInvested,
		PnLPct:     pnlPct,
		PnLAmount:  finalValue - position.AmountInvested,
		FinalValue: finalValue,
		CloseDate:  utils.DateOnly(now),
	}, nil
}

func (s *positionService) OpenPosition(ctx context.Context, ticker string, decision *dto.TradeDecision, entryPrice float64, opts ...utils.DBOption) (*model.Position, error) {
	openDate, err := time.Parse("2006-01-02", decision.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", decision.StartDate, err)
	}
	targetCloseDate, err := time.Parse("2006-01-02", decision.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", decision.EndDate, err)
	}

	decisionRaw, err := json.Marshal(decision)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision: %w", err)
	}

	position := &model.Position{
		Ticker:          ticker,
		Direction:       decision.Direction,
		AmountInvested:  decision.AmountToInvest,
		EntryPrice:      entryPrice,
		Leverage:        decision.Leverage,
		OpenDate:        openDate,
		TargetCloseDate: targetCloseDate,
		StopLossPct:     decision.StopLossPct,
		TakeProfitPct:   decision.TakeProfitPct,
		Confidence:      decision.Confidence,
		Rationale:       decision.Summary,
		DecisionRaw:     decisionRaw,
	}
	if err := s.positionRepo.Create(ctx, position, opts...); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *positionService) HasOpenPosition(ctx context.Context, ticker string, asOf time.Time) (bool, error) {
	positions, err := s.positionRepo.Get(ctx, dto.GetPositionsParam{
		Tickers:  []string{ticker},
		Closed:   utils.ToPointer(false),
		ActiveOn: utils.ToPointer(utils.DateOnly(asOf)),
	})
	if err != nil {
		return false, err
	}
	return len(positions) > 0, nil
}

func (s *positionService) CountOpen(ctx context.Context, asOf time.Time) (int, error) {
	positions, err := s.positionRepo.Get(ctx, dto.GetPositionsParam{
		Closed:   utils.ToPointer(false),
		ActiveOn: utils.ToPointer(utils.DateOnly(asOf)),
	})
	if err != nil {
		return 0, err
	}
	return len(positions), nil
}

func (s *positionService) GetOpenPositions(ctx context.Context) ([]model.Position, error) {
	return s.positionRepo.Get(ctx, dto.GetPositionsParam{
		Closed: utils.ToPointer(false),
	})
}
