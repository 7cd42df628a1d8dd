package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (ReportCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReportCacheWithClient(client, time.Hour), mr
}

func TestReportCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key := Key{
		UserID:     "user-1",
		CustomerID: "1234567890",
		TimeRange:  "LAST_30_DAYS",
		Kind:       "ai-analysis",
	}

	_, found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, key, `{"blocks":{}}`))

	content, found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"blocks":{}}`, content)
}

func TestReportCache_KeyNormalization(t *testing.T) {
	key := Key{
		UserID:     "user-1",
		CustomerID: "1234567890",
		TimeRange:  " LAST_30_DAYS ",
		CampaignID: "",
		Kind:       "weekly",
	}

	assert.Equal(t, "report:user-1:1234567890:last_30_days:-:weekly:full", key.String())

	key.DataOnly = true
	key.CampaignID = "555"
	assert.Equal(t, "report:user-1:1234567890:last_30_days:555:weekly:data", key.String())
}

func TestReportCache_DataOnlyIsADistinctEntry(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	full := Key{UserID: "u", CustomerID: "c", TimeRange: "7days", Kind: "ai-analysis"}
	dataOnly := full
	dataOnly.DataOnly = true

	require.NoError(t, cache.Set(ctx, full, "full-artifact"))

	_, found, err := cache.Get(ctx, dataOnly)
	require.NoError(t, err)
	assert.False(t, found, "data-only variant must not alias the full artifact")
}

func TestReportCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key := Key{UserID: "u", CustomerID: "c", TimeRange: "7days", Kind: "weekly"}
	require.NoError(t, cache.Set(ctx, key, "artifact"))

	mr.FastForward(2 * time.Hour)

	_, found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}
