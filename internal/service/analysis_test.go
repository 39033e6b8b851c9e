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

type analysisFixture struct {
	svc *analysisService
	ai  *fakeAIRepo
	now time.Time
}

func newAnalysisFixture(t *testing.T, start time.Time) *analysisFixture {
	t.Helper()

	db := newTestDB(t)
	f := &analysisFixture{
		ai:  &fakeAIRepo{},
		now: start,
	}
	f.svc = &analysisService{
		cfg:               newTestConfig(),
		log:               newTestLogger(t),
		analysisCacheRepo: repository.NewAnalysisCacheRepository(db),
		aiRepo:            f.ai,
		nowFn:             func() time.Time { return f.now },
	}
	return f
}

func testSections() *dto.FilingSections {
	return &dto.FilingSections{
		Business:    "makes phones",
		RiskFactors: "competition",
		MDNA:        "revenue grew",
	}
}

func TestAnalysisMissRunsThreeStagesAndCaches(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newAnalysisFixture(t, start)
	ctx := context.Background()

	analysis, err := f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.NoError(t, err)
	assert.Equal(t, 3, f.ai.analysisCalls)
	assert.Equal(t, "business overview", analysis.BusinessOverview)
	assert.Equal(t, "risk overview", analysis.RiskOverview)
	assert.Equal(t, "full analysis", analysis.FullAnalysis)

	// Within the month: no regeneration.
	f.now = start.AddDate(0, 0, 29)
	_, err = f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.NoError(t, err)
	assert.Equal(t, 3, f.ai.analysisCalls)
}

func TestAnalysisStaleRegenerates(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newAnalysisFixture(t, start)
	ctx := context.Background()

	_, err := f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.NoError(t, err)

	f.now = start.AddDate(0, 0, 31)
	_, err = f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.NoError(t, err)
	assert.Equal(t, 6, f.ai.analysisCalls)
}

func TestAnalysisFailureLeavesCacheUntouched(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	f := newAnalysisFixture(t, start)
	ctx := context.Background()

	f.ai.summarizeErr = assert.AnError
	_, err := f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.Error(t, err)

	// The failed generation stored nothing; the next attempt regenerates.
	f.ai.summarizeErr = nil
	analysis, err := f.svc.GetOrGenerate(ctx, "AAPL", testSections())
	require.NoError(t, err)
	assert.Equal(t, "full analysis", analysis.FullAnalysis)
}
