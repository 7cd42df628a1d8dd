package aggregating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/ads-insights-api/infrastructure/cache"
	cachemocks "github.com/vfg2006/ads-insights-api/infrastructure/cache/mocks"
	summarizermocks "github.com/vfg2006/ads-insights-api/infrastructure/integrator/summarizer/mocks"
	repomocks "github.com/vfg2006/ads-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/usecases/reporting"
)

// fakeRunner satisfies ReportRunner without hitting the Ads API.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, _ domain.ReportParams, def *reporting.Definition, _ domain.ReportMode) (*domain.ReportPayload, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err, ok := f.fail[def.Key]; ok {
		return nil, err
	}
	return &domain.ReportPayload{
		Key:     def.Key,
		Title:   def.Title,
		Headers: def.Headers,
		Rows:    [][]any{},
		Summary: map[string]float64{"clicks": 1},
	}, nil
}

type aggregatorFixture struct {
	service    Service
	runner     *fakeRunner
	cache      *cachemocks.MockReportCache
	usageRepo  *repomocks.MockUsageRepository
	summarizer *summarizermocks.MockSummarizer
}

func newFixture(t *testing.T) *aggregatorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	runner := &fakeRunner{}
	mockCache := cachemocks.NewMockReportCache(ctrl)
	mockUsage := repomocks.NewMockUsageRepository(ctrl)
	mockSummarizer := summarizermocks.NewMockSummarizer(ctrl)

	cfg := &config.Config{Usage: config.Usage{MonthlyLimit: 50}}

	return &aggregatorFixture{
		service:    NewService(cfg, reporting.NewRegistry(), runner, mockCache, mockUsage, mockSummarizer),
		runner:     runner,
		cache:      mockCache,
		usageRepo:  mockUsage,
		summarizer: mockSummarizer,
	}
}

func withinLimit() *domain.LimitStatus {
	return &domain.LimitStatus{CanGenerate: true, CurrentUsage: 3, Limit: 50}
}

func testParams() domain.ReportParams {
	return domain.ReportParams{
		AccessToken: "t",
		CustomerID:  "123",
		TimeRange:   "7days",
	}
}

func TestGenerate_CacheHitDoesNoWork(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), cache.Key{
			UserID:     "user-1",
			CustomerID: "123",
			TimeRange:  "7days",
			Kind:       "weekly",
		}).
		Return(`{"kind":"weekly","customer_id":"123","blocks":{}}`, true, nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusCached, outcome.Status)
	require.NotNil(t, outcome.Bundle)
	assert.Equal(t, domain.KindWeekly, outcome.Bundle.Kind)
	// No generation, no usage accounting.
	assert.Zero(t, f.runner.calls)
}

func TestGenerate_CheckOnlyMissIsNotReady(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{CheckOnly: true})
	require.NoError(t, err)

	assert.Equal(t, StatusNotReady, outcome.Status)
	assert.Nil(t, outcome.Bundle)
	assert.Zero(t, f.runner.calls)
}

func TestGenerate_FreshWeeklyRecordsUsageOnce(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		DoAndReturn(func(record *domain.UsageRecord) (string, error) {
			assert.Equal(t, "user-1", record.UserID)
			assert.Equal(t, domain.KindWeekly, record.Kind)
			assert.Equal(t, "123", record.CustomerID)
			return "rec-1", nil
		}).
		Times(1)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusGenerated, outcome.Status)
	require.NotNil(t, outcome.Bundle)
	assert.Len(t, outcome.Bundle.Blocks, f.runner.calls)
	assert.Empty(t, outcome.Bundle.Summary, "weekly bundles are never summarized")
}

func TestGenerate_ForceRegenerateSkipsCacheRead(t *testing.T) {
	f := newFixture(t)

	// No Get expectation: a cache consult would fail the test.
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		Return("rec-1", nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{ForceRegenerate: true})
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, outcome.Status)
}

func TestGenerate_AIAnalysisIsSummarized(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.summarizer.EXPECT().
		Summarize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Campaign performance")
			return "The account is healthy.", nil
		}).
		Times(1)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		Return("rec-1", nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindAIAnalysis, Options{})
	require.NoError(t, err)

	assert.Equal(t, StatusGenerated, outcome.Status)
	assert.Equal(t, "The account is healthy.", outcome.Bundle.Summary)
}

func TestGenerate_DataOnlySkipsSummarizer(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		Return("rec-1", nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindAIAnalysis, Options{DataOnly: true})
	require.NoError(t, err)
	assert.Empty(t, outcome.Bundle.Summary)
}

func TestGenerate_ConstituentFailureFailsTheAggregate(t *testing.T) {
	f := newFixture(t)
	f.runner.fail = map[string]error{
		reporting.KeyKeywords:    errors.New("quota exceeded"),
		reporting.KeySearchTerms: errors.New("quota exceeded"),
	}

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	// No Set and no Record: a partial bundle must never be cached or billed.

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	assert.Nil(t, outcome)

	var constituentErr *ConstituentError
	require.ErrorAs(t, err, &constituentErr)
	assert.Equal(t, domain.KindWeekly, constituentErr.Kind)
	assert.Equal(t, []string{reporting.KeyKeywords, reporting.KeySearchTerms}, constituentErr.Failed)
}

func TestGenerate_LimitExhaustedIsTyped(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(&domain.LimitStatus{
			CanGenerate:  false,
			CurrentUsage: 50,
			Limit:        50,
			ResetsAt:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		}, nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	assert.Nil(t, outcome)

	var limitErr *LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 50, limitErr.Status.CurrentUsage)
	assert.Zero(t, f.runner.calls)
}

func TestGenerate_CacheWriteFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("", false, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis down"))
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		Return("rec-1", nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, outcome.Status)
}

func TestGenerate_CorruptCacheEntryRegenerates(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return("{not json", true, nil)
	f.usageRepo.EXPECT().
		CheckLimit("user-1", 50).
		Return(withinLimit(), nil)
	f.cache.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	f.usageRepo.EXPECT().
		Record(gomock.Any()).
		Return("rec-1", nil)

	outcome, err := f.service.Generate(context.Background(), "user-1", testParams(), domain.KindWeekly, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, outcome.Status)
}
