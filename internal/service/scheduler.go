package service

import (
	"context"
	"fmt"

	"paper-trading/config"
	"paper-trading/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService triggers unattended trading runs on a cron schedule.
// SkipIfStillRunning keeps a slow run from stacking up behind itself.
type SchedulerService interface {
	Start() error
	Stop() context.Context
}

type schedulerService struct {
	cfg            *config.Config
	log            *logger.Logger
	cron           *cron.Cron
	tradingService TradingService
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, tradingService TradingService) SchedulerService {
	return &schedulerService{
		cfg:            cfg,
		log:            log,
		cron:           cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		tradingService: tradingService,
	}
}

func (s *schedulerService) Start() error {
	if !s.cfg.Scheduler.Enabled {
		s.log.Info("Scheduler disabled")
		return nil
	}

	_, err := s.cron.AddJob(s.cfg.Scheduler.TradeCron,
		cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(s.runTrade)))
	if err != nil {
		return fmt.Errorf("failed to schedule trading run: %w", err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("trade_cron", s.cfg.Scheduler.TradeCron))
	return nil
}

func (s *schedulerService) runTrade() {
	ctx := context.Background()

	outcome, err := s.tradingService.Run(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Scheduled trading run failed", logger.ErrorField(err))
		return
	}

	s.log.InfoContext(ctx, "Scheduled trading run finished",
		logger.StringField("status", string(outcome.Status)),
		logger.IntField("closed_positions", len(outcome.Closed)),
	)
}

// Stop halts scheduling and returns a context that is done once running jobs
// have finished.
func (s *schedulerService) Stop() context.Context {
	return s.cron.Stop()
}
