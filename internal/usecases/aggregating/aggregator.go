// Package aggregating composes the report catalog into one composite
// artifact per request: cache-first, generated concurrently, summarized for
// AI reports, and accounted against the user's monthly budget.
package aggregating

import (
	"context"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/ads-insights-api/infrastructure/cache"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/summarizer"
	"github.com/vfg2006/ads-insights-api/infrastructure/repository"
	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Status tags the three ways a Generate call can conclude.
type Status string

const (
	// StatusCached means a previously generated artifact was returned; no
	// generation work happened and no usage was accounted.
	StatusCached Status = "cached"
	// StatusGenerated means a fresh artifact was built and accounted.
	StatusGenerated Status = "generated"
	// StatusNotReady is the check-only answer when nothing is cached.
	StatusNotReady Status = "not_ready"
)

// Outcome is the tagged result of one Generate call. Bundle is nil only for
// StatusNotReady.
type Outcome struct {
	Status Status
	Bundle *domain.Bundle
}

// Options tune one Generate call.
type Options struct {
	// ForceRegenerate skips the cache consult and always builds fresh.
	ForceRegenerate bool
	// CheckOnly answers "is it ready?" from the cache without generating.
	CheckOnly bool
	// DataOnly skips the summarization step for AI reports.
	DataOnly bool
}

// ReportRunner runs one report definition. Satisfied by *reporting.Executor.
type ReportRunner interface {
	Run(ctx context.Context, params domain.ReportParams, def *reporting.Definition, mode domain.ReportMode) (*domain.ReportPayload, error)
}

// Service generates composite report artifacts.
type Service interface {
	Generate(ctx context.Context, identity string, params domain.ReportParams, kind domain.ReportKind, opts Options) (*Outcome, error)
}

type service struct {
	cfg        *config.Config
	registry   *reporting.Registry
	runner     ReportRunner
	cache      cache.ReportCache
	usageRepo  repository.UsageRepository
	summarizer summarizer.Summarizer
}

func NewService(
	cfg *config.Config,
	registry *reporting.Registry,
	runner ReportRunner,
	reportCache cache.ReportCache,
	usageRepo repository.UsageRepository,
	summ summarizer.Summarizer,
) Service {
	return &service{
		cfg:        cfg,
		registry:   registry,
		runner:     runner,
		cache:      reportCache,
		usageRepo:  usageRepo,
		summarizer: summ,
	}
}

// Generate resolves one composite report request. The cache entry is shared
// mutable state between concurrent regenerations of the same key; the policy
// is read-then-maybe-write with last write wins, not a lock.
func (s *service) Generate(ctx context.Context, identity string, params domain.ReportParams, kind domain.ReportKind, opts Options) (*Outcome, error) {
	logger := log.ForContext(ctx)

	cacheKey := cache.Key{
		UserID:     identity,
		CustomerID: params.CustomerID,
		TimeRange:  params.TimeRange,
		CampaignID: params.CampaignID,
		Kind:       string(kind),
		DataOnly:   opts.DataOnly,
	}

	if !opts.ForceRegenerate {
		if bundle := s.lookupCached(ctx, cacheKey); bundle != nil {
			logger.WithFields(log.Fields{
				"report_kind": string(kind),
				"customer_id": params.CustomerID,
			}).Info("aggregating: returning cached artifact")
			return &Outcome{Status: StatusCached, Bundle: bundle}, nil
		}
	}

	if opts.CheckOnly {
		return &Outcome{Status: StatusNotReady}, nil
	}

	limitStatus, err := s.usageRepo.CheckLimit(identity, s.cfg.Usage.MonthlyLimit)
	if err != nil {
		return nil, errors.Wrap(ErrUsageCheck, err.Error())
	}
	if !limitStatus.CanGenerate {
		return nil, &LimitExceededError{Status: limitStatus}
	}

	bundle, err := s.buildBundle(ctx, params, kind)
	if err != nil {
		return nil, err
	}

	if kind == domain.KindAIAnalysis && !opts.DataOnly {
		summary, err := s.summarizer.Summarize(ctx, buildPrompt(bundle, s.blockOrder(kind)))
		if err != nil {
			return nil, errors.Wrap(ErrSummarizer, err.Error())
		}
		bundle.Summary = summary
	}

	s.persist(ctx, cacheKey, bundle)

	record := &domain.UsageRecord{
		UserID:     identity,
		Kind:       kind,
		CustomerID: params.CustomerID,
		TimeRange:  params.TimeRange,
		CampaignID: params.CampaignID,
	}
	if _, err := s.usageRepo.Record(record); err != nil {
		// The artifact exists and was returned; a lost usage row must not
		// fail the call.
		logger.WithFields(log.Fields{
			"user_id": identity,
			"error":   err.Error(),
		}).Error("aggregating: error recording usage")
	}

	return &Outcome{Status: StatusGenerated, Bundle: bundle}, nil
}

// lookupCached returns the cached bundle, or nil on miss, read failure, or a
// corrupt entry. The cache is an optimization; none of these fail the call.
func (s *service) lookupCached(ctx context.Context, key cache.Key) *domain.Bundle {
	content, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"key":   key.String(),
			"error": err.Error(),
		}).Warn("aggregating: cache read failed, regenerating")
		return nil
	}
	if !found {
		return nil
	}

	bundle := &domain.Bundle{}
	if err := json.UnmarshalFromString(content, bundle); err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"key": key.String(),
		}).Warn("aggregating: corrupt cache entry, regenerating")
		return nil
	}
	return bundle
}

// buildBundle fans the constituent definitions out concurrently. Every block
// must succeed; failures are collected so the error names all of them.
func (s *service) buildBundle(ctx context.Context, params domain.ReportParams, kind domain.ReportKind) (*domain.Bundle, error) {
	mode := domain.ModeFull
	if kind == domain.KindWeekly {
		mode = domain.ModeWeekly
	}

	defs := s.registry.ForKind(kind)

	blocks := make(map[string]*domain.ReportPayload, len(defs))
	var failed []string
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, def := range defs {
		def := def
		g.Go(func() error {
			payload, err := s.runner.Run(gctx, params, def, mode)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.ForContext(ctx).WithFields(log.Fields{
					"report_key": def.Key,
					"error":      err.Error(),
				}).Error("aggregating: constituent report failed")
				failed = append(failed, def.Key)
				return nil
			}
			blocks[def.Key] = payload
			return nil
		})
	}
	// Goroutines only report through the collectors; Wait is a barrier.
	_ = g.Wait()

	if len(failed) > 0 {
		sort.Strings(failed)
		return nil, &ConstituentError{Kind: kind, Failed: failed}
	}

	return &domain.Bundle{
		Kind:        kind,
		CustomerID:  params.CustomerID,
		TimeRange:   params.TimeRange,
		CampaignID:  params.CampaignID,
		Blocks:      blocks,
		GeneratedAt: timeNow().UTC(),
	}, nil
}

// persist caches the artifact. Write failures are logged by the cache layer
// and swallowed here: a lost cache entry only costs a future regeneration.
func (s *service) persist(ctx context.Context, key cache.Key, bundle *domain.Bundle) {
	content, err := json.MarshalToString(bundle)
	if err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"key": key.String(),
		}).Warn("aggregating: error serializing bundle for cache")
		return
	}
	_ = s.cache.Set(ctx, key, content)
}

func (s *service) blockOrder(kind domain.ReportKind) []string {
	defs := s.registry.ForKind(kind)
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		order = append(order, def.Key)
	}
	return order
}

// timeNow is stubbed in tests.
var timeNow = time.Now
