package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/internal/domain"
)

func TestRegistry_CatalogIsComplete(t *testing.T) {
	registry := NewRegistry()

	keys := registry.Keys()
	assert.Len(t, keys, 16)
	assert.Equal(t, KeyCampaigns, keys[0])

	for _, key := range keys {
		def, ok := registry.Get(key)
		require.True(t, ok, "key %q must resolve", key)
		assert.Equal(t, key, def.Key)
		assert.NotEmpty(t, def.Title)
		assert.NotEmpty(t, def.Headers)
		assert.NotNil(t, def.Queries)
		assert.NotNil(t, def.Map)
	}

	_, ok := registry.Get("no-such-report")
	assert.False(t, ok)
}

func TestRegistry_ForKind(t *testing.T) {
	registry := NewRegistry()

	weekly := registry.ForKind(domain.KindWeekly)
	require.Len(t, weekly, len(weeklyBlocks))
	assert.Equal(t, KeyCampaigns, weekly[0].Key)

	full := registry.ForKind(domain.KindAIAnalysis)
	assert.Len(t, full, len(registry.Keys()))
}

func TestRowLimits_For(t *testing.T) {
	limits := DefaultRowLimits()

	assert.Equal(t, 200, limits.For(KeyCampaigns, domain.ModeFull))
	assert.Equal(t, 50, limits.For(KeyCampaigns, domain.ModeWeekly))
	assert.Equal(t, 500, limits.For(KeySearchTerms, domain.ModeFull))
	assert.Equal(t, 100, limits.For(KeySearchTerms, domain.ModeWeekly))
	assert.Equal(t, 100, limits.For(KeyChangeHistory, domain.ModeFull))
}

func TestDeviceBreakdown_AggregatesBySegment(t *testing.T) {
	def := devicesDefinition()

	rows := []adsdomain.Row{
		{
			Segments: &adsdomain.Segments{Device: "MOBILE"},
			Metrics:  &adsdomain.Metrics{ClicksRaw: "10", ImpressionsRaw: "100", CostMicros: "1000000"},
		},
		{
			Segments: &adsdomain.Segments{Device: "DESKTOP"},
			Metrics:  &adsdomain.Metrics{ClicksRaw: "20", ImpressionsRaw: "200", CostMicros: "2000000"},
		},
		{
			Segments: &adsdomain.Segments{Device: "MOBILE"},
			Metrics:  &adsdomain.Metrics{ClicksRaw: "5", ImpressionsRaw: "50", CostMicros: "500000"},
		},
	}

	payload := def.Map(BuildContext{}, map[string][]adsdomain.Row{queryMain: rows})

	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "MOBILE", payload.Rows[0][0])
	assert.Equal(t, int64(15), payload.Rows[0][1])
	assert.Equal(t, "DESKTOP", payload.Rows[1][0])
	assert.Equal(t, int64(20), payload.Rows[1][1])
	assert.Equal(t, float64(35), payload.Summary["clicks"])
	assert.Equal(t, 3.5, payload.Summary["cost"])
}

func TestBudgetDefinition_ComputesUtilization(t *testing.T) {
	def := budgetsDefinition()

	rows := []adsdomain.Row{
		{
			Campaign:       &adsdomain.Campaign{Name: "Brand", Status: "ENABLED"},
			CampaignBudget: &adsdomain.CampaignBudget{AmountMicros: "100000000"},
			Metrics:        &adsdomain.Metrics{CostMicros: "75000000"},
		},
	}

	payload := def.Map(BuildContext{}, map[string][]adsdomain.Row{queryMain: rows})

	require.Len(t, payload.Rows, 1)
	assert.Equal(t, float64(100), payload.Rows[0][2])
	assert.Equal(t, float64(75), payload.Rows[0][3])
	assert.Equal(t, float64(75), payload.Rows[0][4])
	assert.Equal(t, float64(75), payload.Summary["utilization"])
}
