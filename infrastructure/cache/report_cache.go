// Package cache implements the report cache collaborator on Redis. Caching
// is an optimization: failures here are logged and swallowed, never surfaced.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// Key identifies one cached report artifact. Two artifacts can exist per
// logical report: the full one and the data-only one.
type Key struct {
	UserID     string
	CustomerID string
	TimeRange  string
	CampaignID string
	Kind       string
	DataOnly   bool
}

// String renders the Redis key. Parts are normalized so equivalent requests
// hit the same entry.
func (k Key) String() string {
	campaign := strings.TrimSpace(k.CampaignID)
	if campaign == "" {
		campaign = "-"
	}

	timeRange := strings.ToLower(strings.TrimSpace(k.TimeRange))
	if timeRange == "" {
		timeRange = "-"
	}

	variant := "full"
	if k.DataOnly {
		variant = "data"
	}

	return fmt.Sprintf("report:%s:%s:%s:%s:%s:%s",
		k.UserID, k.CustomerID, timeRange, campaign, k.Kind, variant)
}

// ReportCache stores serialized report artifacts.
type ReportCache interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Set(ctx context.Context, key Key, content string) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache builds the Redis-backed cache.
func NewReportCache(cfg *config.Config) (ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache: error connecting to redis: %w", err)
	}

	return &redisReportCache{
		client: client,
		ttl:    cfg.Redis.ReportTTL,
	}, nil
}

// NewReportCacheWithClient wires an existing client, used by tests.
func NewReportCacheWithClient(client *redis.Client, ttl time.Duration) ReportCache {
	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached artifact and whether it was present.
func (c *redisReportCache) Get(ctx context.Context, key Key) (string, bool, error) {
	content, err := c.client.Get(ctx, key.String()).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: error reading %s: %w", key.String(), err)
	}
	return content, true, nil
}

// Set stores the artifact with the configured TTL.
func (c *redisReportCache) Set(ctx context.Context, key Key, content string) error {
	if err := c.client.Set(ctx, key.String(), content, c.ttl).Err(); err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"key":   key.String(),
			"error": err.Error(),
		}).Warn("cache: error writing report artifact")
		return fmt.Errorf("cache: error writing %s: %w", key.String(), err)
	}
	return nil
}
