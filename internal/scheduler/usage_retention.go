// Package scheduler holds the background jobs that run on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-insights-api/infrastructure/repository"
	"github.com/vfg2006/ads-insights-api/internal/config"
)

// UsageRetentionConfig is the retention job configuration.
type UsageRetentionConfig struct {
	CronSchedule string
	MaxAgeMonths int
	Enabled      bool
}

// UsageRetentionService prunes usage records past the retention horizon so the
// accounting table only keeps what the limit checks and audits need.
type UsageRetentionService struct {
	scheduler     *gocron.Scheduler
	config        UsageRetentionConfig
	usageRepo     repository.UsageRepository
	running       bool
	runningMutex  sync.Mutex
	lastStartedAt time.Time
	lastFinished  time.Time
}

func NewUsageRetentionService(usageRepo repository.UsageRepository, appConfig *config.Config) *UsageRetentionService {
	retentionConfig := UsageRetentionConfig{
		CronSchedule: appConfig.Retention.CronSchedule,
		MaxAgeMonths: appConfig.Retention.MaxAgeMonths,
		Enabled:      appConfig.Retention.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  retentionConfig.CronSchedule,
		"max_age_months": retentionConfig.MaxAgeMonths,
		"enabled":        retentionConfig.Enabled,
	}).Info("Usage retention scheduler configuration loaded")

	return &UsageRetentionService{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    retentionConfig,
		usageRepo: usageRepo,
	}
}

// Start schedules the retention job and stops it when the context ends.
func (s *UsageRetentionService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Usage retention disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Starting usage retention scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.pruneExpiredUsage()
	})
	if err != nil {
		return fmt.Errorf("error scheduling usage retention job: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Stopping usage retention scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *UsageRetentionService) pruneExpiredUsage() {
	s.runningMutex.Lock()
	if s.running {
		s.runningMutex.Unlock()
		logrus.Info("Usage retention run already in progress, skipping")
		return
	}
	s.running = true
	s.runningMutex.Unlock()

	defer func() {
		s.runningMutex.Lock()
		s.running = false
		s.runningMutex.Unlock()
	}()

	s.lastStartedAt = time.Now()
	cutoff := time.Now().UTC().AddDate(0, -s.config.MaxAgeMonths, 0)

	logrus.WithField("cutoff", cutoff.Format(time.DateOnly)).Info("Pruning expired usage records")

	deleted, err := s.usageRepo.DeleteOlderThan(cutoff)
	if err != nil {
		logrus.WithError(err).Error("Error pruning expired usage records")
		return
	}

	logrus.WithFields(logrus.Fields{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.DateOnly),
	}).Info("Usage retention run finished")

	s.lastFinished = time.Now()
}

// TriggerManualRun starts a retention run outside the cron cadence.
func (s *UsageRetentionService) TriggerManualRun() {
	s.runningMutex.Lock()
	if s.running {
		s.runningMutex.Unlock()
		logrus.Info("Usage retention run already in progress, ignoring manual trigger")
		return
	}
	s.runningMutex.Unlock()

	logrus.Info("Starting manual usage retention run")
	go s.pruneExpiredUsage()
}

// GetStatus reports the scheduler state for the status endpoint.
func (s *UsageRetentionService) GetStatus() map[string]any {
	return map[string]any{
		"retention_enabled":     s.config.Enabled,
		"retention_cron":        s.config.CronSchedule,
		"retention_max_age":     fmt.Sprintf("%d months", s.config.MaxAgeMonths),
		"last_run_started_at":   s.lastStartedAt,
		"last_run_completed_at": s.lastFinished,
	}
}
