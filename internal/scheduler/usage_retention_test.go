package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/ads-insights-api/infrastructure/repository/mocks"
	"github.com/vfg2006/ads-insights-api/internal/config"
)

func retentionConfig(enabled bool) *config.Config {
	return &config.Config{
		Retention: config.Retention{
			CronSchedule: "0 4 * * *",
			MaxAgeMonths: 12,
			Enabled:      enabled,
		},
	}
}

func TestUsageRetention_PrunesWithTwelveMonthCutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsage := mocks.NewMockUsageRepository(ctrl)
	mockUsage.EXPECT().
		DeleteOlderThan(gomock.Any()).
		DoAndReturn(func(cutoff time.Time) (int64, error) {
			expected := time.Now().UTC().AddDate(0, -12, 0)
			assert.WithinDuration(t, expected, cutoff, time.Minute)
			return 42, nil
		})

	service := NewUsageRetentionService(mockUsage, retentionConfig(true))
	service.pruneExpiredUsage()

	assert.False(t, service.lastFinished.IsZero())
}

func TestUsageRetention_RepositoryErrorDoesNotMarkCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsage := mocks.NewMockUsageRepository(ctrl)
	mockUsage.EXPECT().
		DeleteOlderThan(gomock.Any()).
		Return(int64(0), errors.New("connection refused"))

	service := NewUsageRetentionService(mockUsage, retentionConfig(true))
	service.pruneExpiredUsage()

	assert.True(t, service.lastFinished.IsZero())
}

func TestUsageRetention_DisabledStartSchedulesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No DeleteOlderThan expectation: any call would fail the test.
	mockUsage := mocks.NewMockUsageRepository(ctrl)

	service := NewUsageRetentionService(mockUsage, retentionConfig(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, service.Start(ctx))
}
