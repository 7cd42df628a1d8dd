package gaql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuild(t *testing.T) {
	q := Select("campaign.id", "campaign.name", "metrics.cost_micros").
		From("campaign").
		Where(
			During("LAST_30_DAYS"),
			Is("campaign.status", "ENABLED"),
		).
		OrderBy("metrics.cost_micros DESC").
		Limit(50)

	expected := "SELECT campaign.id, campaign.name, metrics.cost_micros " +
		"FROM campaign " +
		"WHERE segments.date DURING LAST_30_DAYS AND campaign.status = ENABLED " +
		"ORDER BY metrics.cost_micros DESC " +
		"LIMIT 50"
	assert.Equal(t, expected, q.Build())
}

func TestQueryIsImmutable(t *testing.T) {
	base := Select("campaign.id").From("campaign")
	withFilter := base.Where(Eq("campaign.name", "Brand"))

	assert.NotContains(t, base.Build(), "WHERE")
	assert.Contains(t, withFilter.Build(), "WHERE campaign.name = 'Brand'")
}

func TestWhereSkipsZeroConditions(t *testing.T) {
	dateCond, _ := DateCondition(Window{Kind: WindowNone})
	campaignCond, _ := CampaignCondition("")

	q := Select("campaign.id").From("campaign").Where(dateCond, campaignCond)

	assert.Equal(t, "SELECT campaign.id FROM campaign", q.Build())
}

func TestEqEscapesQuotes(t *testing.T) {
	c := Eq("campaign.name", "Bob's \\ Campaign")

	assert.Equal(t, `campaign.name = 'Bob\'s \\ Campaign'`, c.expr)
}

func TestEqIDStripsNonDigits(t *testing.T) {
	c := EqID("campaign.id", "123'; DROP--456")

	assert.Equal(t, "campaign.id = 123456", c.expr)
}

func TestCampaignCondition(t *testing.T) {
	c, ok := CampaignCondition("9876543210")
	assert.True(t, ok)
	assert.Equal(t, "campaign.id = 9876543210", c.expr)

	_, ok = CampaignCondition("   ")
	assert.False(t, ok)
}

func TestBetweenRendering(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	c := Between("segments.date", start, end)
	assert.Equal(t, "segments.date BETWEEN '2024-01-01' AND '2024-01-31'", c.expr)
}

func TestInRendering(t *testing.T) {
	c := In("segments.device", "MOBILE", "DESKTOP")

	assert.Equal(t, "segments.device IN ('MOBILE', 'DESKTOP')", c.expr)
}
