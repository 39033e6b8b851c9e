package service

import (
	"context"

	"paper-trading/config"
	"paper-trading/internal/dto"
	"paper-trading/internal/repository"
	"paper-trading/pkg/logger"
)

// nearTriggerRatio marks a position as close to a trigger once its P&L has
// covered this share of the distance to the trigger.
const nearTriggerRatio = 0.8

// PortfolioService reports the state of the account: cash, open positions and
// their marked-to-market values.
type PortfolioService interface {
	Snapshot(ctx context.Context) (*dto.PortfolioSnapshot, error)
}

type portfolioService struct {
	cfg             *config.Config
	log             *logger.Logger
	ledgerRepo      repository.LedgerRepository
	positionService PositionService
	priceService    PriceService
}

func NewPortfolioService(
	cfg *config.Config,
	log *logger.Logger,
	ledgerRepo repository.LedgerRepository,
	positionService PositionService,
	priceService PriceService,
) PortfolioService {
	return &portfolioService{
		cfg:             cfg,
		log:             log,
		ledgerRepo:      ledgerRepo,
		positionService: positionService,
		priceService:    priceService,
	}
}

func (s *portfolioService) Snapshot(ctx context.Context) (*dto.PortfolioSnapshot, error) {
	availableCash, err := s.ledgerRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := s.positionService.GetOpenPositions(ctx)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(positions))
	for _, position := range positions {
		tickers = append(tickers, position.Ticker)
	}
	prices := s.priceService.GetCurrentPrices(ctx, tickers)

	snapshot := &dto.PortfolioSnapshot{
		AvailableCash: availableCash,
		Positions:     make([]dto.PositionSummary, 0, len(positions)),
	}

	for _, position := range positions {
		summary := dto.PositionSummary{
			Ticker:          position.Ticker,
			Direction:       position.Direction,
			Leverage:        position.Leverage,
			Invested:        position.AmountInvested,
			EntryPrice:      position.EntryPrice,
			StopLossPct:     position.StopLossPct,
			TakeProfitPct:   position.TakeProfitPct,
			TargetCloseDate: position.TargetCloseDate,
			CurrentValue:    position.AmountInvested,
		}

		if price, ok := prices[position.Ticker]; ok {
			pnlPct := CalculatePnL(position.Direction, position.EntryPrice, price, position.Leverage)
			summary.PriceAvailable = true
			summary.CurrentPrice = price
			summary.PnLPct = pnlPct
			summary.PnLAmount = position.AmountInvested * pnlPct / 100
			summary.CurrentValue = position.AmountInvested * (1 + pnlPct/100)
			summary.NearStopLoss = pnlPct <= -position.StopLossPct*nearTriggerRatio
			summary.NearTakeProfit = pnlPct >= position.TakeProfitPct*nearTriggerRatio
		}

		snapshot.InvestedValue += summary.CurrentValue
		snapshot.Positions = append(snapshot.Positions, summary)
	}

	snapshot.TotalValue = snapshot.AvailableCash + snapshot.InvestedValue
	return snapshot, nil
}
