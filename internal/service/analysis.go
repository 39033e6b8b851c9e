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

// AnalysisService caches the derived company analysis for thirty days. A miss
// runs the three oracle stages in order, each stage conditioned on the output
// of the previous ones, and persists all three texts under one stamp. There is
// no stale fallback: a failed generation leaves the cache untouched.
type AnalysisService interface {
	GetOrGenerate(ctx context.Context, ticker string, sections *dto.FilingSections) (*dto.CompanyAnalysis, error)
}

type analysisService struct {
	cfg               *config.Config
	log               *logger.Logger
	analysisCacheRepo repository.AnalysisCacheRepository
	aiRepo            repository.AIRepository
	nowFn             func() time.Time
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	analysisCacheRepo repository.AnalysisCacheRepository,
	aiRepo repository.AIRepository,
) AnalysisService {
	return &analysisService{
		cfg:               cfg,
		log:               log,
		analysisCacheRepo: analysisCacheRepo,
		aiRepo:            aiRepo,
		nowFn:             time.Now,
	}
}

func (s *analysisService) GetOrGenerate(ctx context.Context, ticker string, sections *dto.FilingSections) (*dto.CompanyAnalysis, error) {
	lookup := cachedLookup[*dto.CompanyAnalysis]{
		load: func(ctx context.Context) (*dto.CompanyAnalysis, time.Time, bool, error) {
			entry, err := s.analysisCacheRepo.Get(ctx, ticker)
			if err != nil {
				return nil, time.Time{}, false, err
			}
			if entry == nil {
				return nil, time.Time{}, false, nil
			}
			return &dto.CompanyAnalysis{
				BusinessOverview: entry.BusinessOverview,
				RiskOverview:     entry.RiskOverview,
				FullAnalysis:     entry.FullAnalysis,
			}, entry.LastUpdated, true, nil
		},
		ttl: func(time.Time) time.Duration {
			return s.cfg.Cache.AnalysisTTL
		},
		fetch: func(ctx context.Context) (*dto.CompanyAnalysis, error) {
			return s.generate(ctx, ticker, sections)
		},
		store: func(ctx context.Context, analysis *dto.CompanyAnalysis, now time.Time) error {
			return s.analysisCacheRepo.Upsert(ctx, &model.AnalysisCacheEntry{
				Ticker:           ticker,
				BusinessOverview: analysis.BusinessOverview,
				RiskOverview:     analysis.RiskOverview,
				FullAnalysis:     analysis.FullAnalysis,
				LastUpdated:      now,
			})
		},
		staleFallback: false,
	}
	return lookup.get(ctx, s.nowFn())
}

func (s *analysisService) generate(ctx context.Context, ticker string, sections *dto.FilingSections) (*dto.CompanyAnalysis, error) {
	s.log.InfoContext(ctx, "Generating company analysis", logger.StringField("ticker", ticker))

	businessOverview, err := s.aiRepo.SummarizeBusiness(ctx, sections.Business)
	if err != nil {
		return nil, err
	}

	riskOverview, err := s.aiRepo.SummarizeRisks(ctx, sections.RiskFactors, businessOverview)
	if err != nil {
		return nil, err
	}

	fullAnalysis, err := s.aiRepo.ComposeAnalysis(ctx, sections.MDNA, businessOverview, riskOverview)
	if err != nil {
		return nil, err
	}

	return &dto.CompanyAnalysis{
		BusinessOverview: businessOverview,
		RiskOverview:     riskOverview,
		FullAnalysis:     fullAnalysis,
	}, nil
}
