package reporting

import (
	"sort"
	"strings"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/gaql"
	"github.com/vfg2006/ads-insights-api/pkg/utils"
)

// Report keys, as exposed on the API and used for cache entries and row caps.
const (
	KeyCampaigns         = "campaigns"
	KeyBudgets           = "budgets"
	KeyAdGroups          = "ad-groups"
	KeyKeywords          = "keywords"
	KeySearchTerms       = "search-terms"
	KeySearchTermGap     = "search-term-gap"
	KeyAds               = "ads"
	KeyDevices           = "devices"
	KeyAgeRanges         = "age-ranges"
	KeyGenders           = "genders"
	KeyLocations         = "locations"
	KeyLandingPages      = "landing-pages"
	KeyConversionActions = "conversion-actions"
	KeyHourOfDay         = "hour-of-day"
	KeyDayOfWeek         = "day-of-week"
	KeyChangeHistory     = "change-history"
)

// queryMain names the single query of one-query definitions.
const queryMain = "main"

// metricFields is the metric column set shared by most definitions.
var metricFields = []string{
	"metrics.clicks",
	"metrics.impressions",
	"metrics.cost_micros",
	"metrics.ctr",
	"metrics.average_cpc",
	"metrics.conversions",
	"metrics.conversions_value",
}

var metricHeaders = []string{
	"Clicks", "Impressions", "Cost", "CTR (%)", "Avg. CPC", "Conversions", "Conv. value",
}

var summaryKeys = []string{
	"clicks", "impressions", "cost", "ctr", "avg_cpc",
	"conversions", "conversions_value", "cost_per_conversion", "roas",
}

func selectFields(fields ...string) []string {
	out := make([]string, 0, len(fields)+len(metricFields))
	out = append(out, fields...)
	return append(out, metricFields...)
}

// metricCells renders the shared metric columns of one row.
func metricCells(m *adsdomain.Metrics) []any {
	if m == nil {
		m = &adsdomain.Metrics{}
	}
	return []any{
		m.Clicks(),
		m.Impressions(),
		utils.RoundMetric(m.Cost()),
		utils.RoundWithTwoDecimalPlace(m.CTR * 100),
		utils.RoundWithTwoDecimalPlace(m.AverageCPC()),
		utils.RoundMetric(m.Conversions),
		utils.RoundMetric(m.ConversionsValue),
	}
}

// metricTotals accumulates the summary aggregates: plain sums plus weighted
// ratios recomputed from the sums, never averaged per row.
type metricTotals struct {
	clicks           int64
	impressions      int64
	cost             float64
	conversions      float64
	conversionsValue float64
}

func (t *metricTotals) add(m *adsdomain.Metrics) {
	if m == nil {
		return
	}
	t.clicks += m.Clicks()
	t.impressions += m.Impressions()
	t.cost += m.Cost()
	t.conversions += m.Conversions
	t.conversionsValue += m.ConversionsValue
}

func (t metricTotals) summary() map[string]float64 {
	return map[string]float64{
		"clicks":              float64(t.clicks),
		"impressions":         float64(t.impressions),
		"cost":                utils.RoundMetric(t.cost),
		"ctr":                 utils.Percentage(float64(t.clicks), float64(t.impressions)),
		"avg_cpc":             utils.RoundWithTwoDecimalPlace(utils.SafeDiv(t.cost, float64(t.clicks))),
		"conversions":         utils.RoundMetric(t.conversions),
		"conversions_value":   utils.RoundMetric(t.conversionsValue),
		"cost_per_conversion": utils.RoundWithTwoDecimalPlace(utils.SafeDiv(t.cost, t.conversions)),
		"roas":                utils.RoundWithTwoDecimalPlace(utils.SafeDiv(t.conversionsValue, t.cost)),
	}
}

func campaignsDefinition() *Definition {
	return &Definition{
		Key:         KeyCampaigns,
		Title:       "Campaign performance",
		Headers:     append([]string{"Campaign", "Status", "Channel"}, metricHeaders...),
		SummaryKeys: summaryKeys,
		// Campaigns are the backbone block of every composite report; its
		// absence must never look like an empty account.
		OnUpstreamError: FailLoud,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"campaign.id",
					"campaign.name",
					"campaign.status",
					"campaign.advertising_channel_type",
				)...).
					From("campaign").
					Where(date, campaign, gaql.In("campaign.status", "ENABLED", "PAUSED")).
					OrderBy("metrics.cost_micros DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.Campaign == nil {
					continue
				}
				totals.add(row.Metrics)
				cells := []any{row.Campaign.Name, row.Campaign.Status, row.Campaign.AdvertisingChannelType}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func budgetsDefinition() *Definition {
	return &Definition{
		Key:             KeyBudgets,
		Title:           "Budget utilization",
		Headers:         []string{"Campaign", "Status", "Daily budget", "Cost", "Utilization (%)"},
		SummaryKeys:     []string{"budget", "cost", "utilization"},
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(
					"campaign.id",
					"campaign.name",
					"campaign.status",
					"campaign_budget.amount_micros",
					"campaign_budget.status",
					"metrics.cost_micros",
				).
					From("campaign").
					Where(date, campaign, gaql.In("campaign.status", "ENABLED", "PAUSED")).
					OrderBy("metrics.cost_micros DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totalBudget, totalCost float64
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.Campaign == nil || row.CampaignBudget == nil {
					continue
				}
				budget := row.CampaignBudget.Amount()
				cost := 0.0
				if row.Metrics != nil {
					cost = row.Metrics.Cost()
				}
				totalBudget += budget
				totalCost += cost
				rows = append(rows, []any{
					row.Campaign.Name,
					row.Campaign.Status,
					utils.RoundMetric(budget),
					utils.RoundMetric(cost),
					utils.Percentage(cost, budget),
				})
			}
			return &domain.ReportPayload{
				Rows: rows,
				Summary: map[string]float64{
					"budget":      utils.RoundMetric(totalBudget),
					"cost":        utils.RoundMetric(totalCost),
					"utilization": utils.Percentage(totalCost, totalBudget),
				},
			}
		},
	}
}

func adGroupsDefinition() *Definition {
	return &Definition{
		Key:             KeyAdGroups,
		Title:           "Ad group performance",
		Headers:         append([]string{"Ad group", "Campaign", "Status"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"ad_group.id",
					"ad_group.name",
					"ad_group.status",
					"campaign.name",
				)...).
					From("ad_group").
					Where(date, campaign, gaql.In("ad_group.status", "ENABLED", "PAUSED")).
					OrderBy("metrics.cost_micros DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.AdGroup == nil {
					continue
				}
				campaignName := ""
				if row.Campaign != nil {
					campaignName = row.Campaign.Name
				}
				totals.add(row.Metrics)
				cells := []any{row.AdGroup.Name, campaignName, row.AdGroup.Status}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func keywordsDefinition() *Definition {
	return &Definition{
		Key:             KeyKeywords,
		Title:           "Keyword performance",
		Headers:         append([]string{"Keyword", "Match type", "Quality score"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"ad_group_criterion.keyword.text",
					"ad_group_criterion.keyword.match_type",
					"ad_group_criterion.quality_info.quality_score",
				)...).
					From("keyword_view").
					Where(date, campaign,
						gaql.Is("ad_group_criterion.negative", "FALSE"),
						gaql.In("ad_group_criterion.status", "ENABLED", "PAUSED"),
					).
					OrderBy("metrics.cost_micros DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.AdGroupCriterion == nil || row.AdGroupCriterion.Keyword == nil {
					continue
				}
				crit := row.AdGroupCriterion
				qualityScore := 0
				if crit.QualityInfo != nil {
					qualityScore = crit.QualityInfo.QualityScore
				}
				totals.add(row.Metrics)
				cells := []any{crit.Keyword.Text, crit.Keyword.MatchType, qualityScore}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func searchTermsDefinition() *Definition {
	return &Definition{
		Key:             KeySearchTerms,
		Title:           "Search terms",
		Headers:         append([]string{"Search term", "Status"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"search_term_view.search_term",
					"search_term_view.status",
				)...).
					From("search_term_view").
					Where(date, campaign).
					OrderBy("metrics.impressions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.SearchTermView == nil {
					continue
				}
				totals.add(row.Metrics)
				cells := []any{row.SearchTermView.SearchTerm, row.SearchTermView.Status}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

const (
	querySearchTerms = "search_terms"
	queryKeywords    = "keywords"
)

// searchTermGapDefinition cross-references the search terms that drove traffic
// against the keyword catalog: terms with no matching keyword are expansion
// candidates. Membership uses a normalized key so casing and stray whitespace
// never hide a match.
func searchTermGapDefinition() *Definition {
	return &Definition{
		Key:             KeySearchTermGap,
		Title:           "Search terms without keywords",
		Headers:         append([]string{"Search term"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{
				{
					Name: querySearchTerms,
					Query: gaql.Select(selectFields(
						"search_term_view.search_term",
					)...).
						From("search_term_view").
						Where(date, campaign, gaql.GreaterThan("metrics.impressions", 0)).
						OrderBy("metrics.impressions DESC").
						Limit(bc.Limit),
				},
				{
					Name: queryKeywords,
					Query: gaql.Select(
						"ad_group_criterion.keyword.text",
					).
						From("keyword_view").
						Where(campaign, gaql.Is("ad_group_criterion.negative", "FALSE")).
						Limit(bc.Limit),
				},
			}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			known := make(map[string]struct{}, len(results[queryKeywords]))
			for _, row := range results[queryKeywords] {
				if row.AdGroupCriterion == nil || row.AdGroupCriterion.Keyword == nil {
					continue
				}
				known[utils.NormalizeKey(row.AdGroupCriterion.Keyword.Text)] = struct{}{}
			}

			var totals metricTotals
			rows := make([][]any, 0, len(results[querySearchTerms]))
			for _, row := range results[querySearchTerms] {
				if row.SearchTermView == nil {
					continue
				}
				if _, ok := known[utils.NormalizeKey(row.SearchTermView.SearchTerm)]; ok {
					continue
				}
				totals.add(row.Metrics)
				cells := []any{row.SearchTermView.SearchTerm}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func adsDefinition() *Definition {
	return &Definition{
		Key:             KeyAds,
		Title:           "Ad performance",
		Headers:         append([]string{"Ad", "Type", "Status", "Final URL"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"ad_group_ad.ad.id",
					"ad_group_ad.ad.type",
					"ad_group_ad.status",
					"ad_group_ad.ad.final_urls",
					"ad_group_ad.ad.responsive_search_ad.headlines",
				)...).
					From("ad_group_ad").
					Where(date, campaign, gaql.In("ad_group_ad.status", "ENABLED", "PAUSED")).
					OrderBy("metrics.impressions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.AdGroupAd == nil || row.AdGroupAd.Ad == nil {
					continue
				}
				ad := row.AdGroupAd.Ad
				finalURL := ""
				if len(ad.FinalURLs) > 0 {
					finalURL = ad.FinalURLs[0]
				}
				totals.add(row.Metrics)
				cells := []any{adLabel(ad), ad.Type, row.AdGroupAd.Status, finalURL}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

// adLabel renders a human-readable handle for an ad: the first responsive
// search ad headline when present, the ad id otherwise.
func adLabel(ad *adsdomain.Ad) string {
	if ad.ResponsiveSearchAd != nil && len(ad.ResponsiveSearchAd.Headlines) > 0 {
		return ad.ResponsiveSearchAd.Headlines[0].Text
	}
	return ad.ID
}

func devicesDefinition() *Definition {
	return segmentDefinition(
		KeyDevices,
		"Performance by device",
		"Device",
		"segments.device",
		func(s *adsdomain.Segments) (string, bool) {
			return s.Device, s.Device != ""
		},
	)
}

func ageRangesDefinition() *Definition {
	return &Definition{
		Key:             KeyAgeRanges,
		Title:           "Performance by age range",
		Headers:         append([]string{"Age range"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"ad_group_criterion.age_range.type",
				)...).
					From("age_range_view").
					Where(date, campaign).
					OrderBy("metrics.impressions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			return criterionBreakdown(results[queryMain], func(c *adsdomain.AdGroupCriterion) (string, bool) {
				if c.AgeRange == nil {
					return "", false
				}
				return c.AgeRange.Type, true
			})
		},
	}
}

func gendersDefinition() *Definition {
	return &Definition{
		Key:             KeyGenders,
		Title:           "Performance by gender",
		Headers:         append([]string{"Gender"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"ad_group_criterion.gender.type",
				)...).
					From("gender_view").
					Where(date, campaign).
					OrderBy("metrics.impressions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			return criterionBreakdown(results[queryMain], func(c *adsdomain.AdGroupCriterion) (string, bool) {
				if c.Gender == nil {
					return "", false
				}
				return c.Gender.Type, true
			})
		},
	}
}

// criterionBreakdown aggregates rows by a criterion-derived label.
func criterionBreakdown(rows []adsdomain.Row, label func(*adsdomain.AdGroupCriterion) (string, bool)) *domain.ReportPayload {
	buckets := make(map[string]*metricTotals)
	order := make([]string, 0)
	var totals metricTotals
	for _, row := range rows {
		if row.AdGroupCriterion == nil {
			continue
		}
		name, ok := label(row.AdGroupCriterion)
		if !ok {
			continue
		}
		bucket, exists := buckets[name]
		if !exists {
			bucket = &metricTotals{}
			buckets[name] = bucket
			order = append(order, name)
		}
		bucket.add(row.Metrics)
		totals.add(row.Metrics)
	}

	out := make([][]any, 0, len(order))
	for _, name := range order {
		out = append(out, bucketRow(name, buckets[name]))
	}
	return &domain.ReportPayload{Rows: out, Summary: totals.summary()}
}

func locationsDefinition() *Definition {
	return &Definition{
		Key:             KeyLocations,
		Title:           "Performance by location",
		Headers:         append([]string{"Country criterion", "Location type"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"geographic_view.country_criterion_id",
					"geographic_view.location_type",
				)...).
					From("geographic_view").
					Where(date, campaign).
					OrderBy("metrics.impressions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.GeographicView == nil {
					continue
				}
				totals.add(row.Metrics)
				cells := []any{row.GeographicView.CountryCriterionID, row.GeographicView.LocationType}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func landingPagesDefinition() *Definition {
	return &Definition{
		Key:             KeyLandingPages,
		Title:           "Landing page performance",
		Headers:         append([]string{"Landing page"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"landing_page_view.unexpanded_final_url",
				)...).
					From("landing_page_view").
					Where(date, campaign).
					OrderBy("metrics.clicks DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var totals metricTotals
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.LandingPageView == nil {
					continue
				}
				totals.add(row.Metrics)
				cells := []any{row.LandingPageView.UnexpandedFinalURL}
				rows = append(rows, append(cells, metricCells(row.Metrics)...))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

func conversionActionsDefinition() *Definition {
	return &Definition{
		Key:             KeyConversionActions,
		Title:           "Conversion actions",
		Headers:         []string{"Conversion action", "Category", "Type", "Status", "Conversions", "Conv. value"},
		SummaryKeys:     []string{"conversions", "conversions_value"},
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(
					"conversion_action.id",
					"conversion_action.name",
					"conversion_action.category",
					"conversion_action.type",
					"conversion_action.status",
					"metrics.conversions",
					"metrics.conversions_value",
				).
					From("conversion_action").
					Where(date, gaql.Is("conversion_action.status", "ENABLED")).
					OrderBy("metrics.conversions DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			var conversions, value float64
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.ConversionAction == nil {
					continue
				}
				rowConversions, rowValue := 0.0, 0.0
				if row.Metrics != nil {
					rowConversions = row.Metrics.Conversions
					rowValue = row.Metrics.ConversionsValue
				}
				conversions += rowConversions
				value += rowValue
				rows = append(rows, []any{
					row.ConversionAction.Name,
					row.ConversionAction.Category,
					row.ConversionAction.Type,
					row.ConversionAction.Status,
					utils.RoundMetric(rowConversions),
					utils.RoundMetric(rowValue),
				})
			}
			return &domain.ReportPayload{
				Rows: rows,
				Summary: map[string]float64{
					"conversions":       utils.RoundMetric(conversions),
					"conversions_value": utils.RoundMetric(value),
				},
			}
		},
	}
}

func hourOfDayDefinition() *Definition {
	return &Definition{
		Key:             KeyHourOfDay,
		Title:           "Performance by hour of day",
		Headers:         append([]string{"Hour"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"segments.hour",
				)...).
					From("campaign").
					Where(date, campaign),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			buckets := make(map[int]*metricTotals)
			var totals metricTotals
			for _, row := range results[queryMain] {
				if row.Segments == nil {
					continue
				}
				bucket, exists := buckets[row.Segments.Hour]
				if !exists {
					bucket = &metricTotals{}
					buckets[row.Segments.Hour] = bucket
				}
				bucket.add(row.Metrics)
				totals.add(row.Metrics)
			}

			hours := make([]int, 0, len(buckets))
			for hour := range buckets {
				hours = append(hours, hour)
			}
			sort.Ints(hours)

			rows := make([][]any, 0, len(hours))
			for _, hour := range hours {
				rows = append(rows, bucketRow(hour, buckets[hour]))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

// weekdayOrder fixes the display order of the day-of-week breakdown.
var weekdayOrder = []string{
	"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
}

func dayOfWeekDefinition() *Definition {
	return &Definition{
		Key:             KeyDayOfWeek,
		Title:           "Performance by day of week",
		Headers:         append([]string{"Day"}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(
					"segments.day_of_week",
				)...).
					From("campaign").
					Where(date, campaign),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			buckets := make(map[string]*metricTotals)
			var totals metricTotals
			for _, row := range results[queryMain] {
				if row.Segments == nil || row.Segments.DayOfWeek == "" {
					continue
				}
				bucket, exists := buckets[row.Segments.DayOfWeek]
				if !exists {
					bucket = &metricTotals{}
					buckets[row.Segments.DayOfWeek] = bucket
				}
				bucket.add(row.Metrics)
				totals.add(row.Metrics)
			}

			rows := make([][]any, 0, len(buckets))
			for _, day := range weekdayOrder {
				if bucket, ok := buckets[day]; ok {
					rows = append(rows, bucketRow(day, bucket))
				}
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

// segmentDefinition builds a breakdown report over one segment of the
// campaign resource.
func segmentDefinition(key, title, header, field string, label func(*adsdomain.Segments) (string, bool)) *Definition {
	return &Definition{
		Key:             key,
		Title:           title,
		Headers:         append([]string{header}, metricHeaders...),
		SummaryKeys:     summaryKeys,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			date, _ := gaql.DateCondition(bc.Window)
			campaign, _ := gaql.CampaignCondition(bc.Params.CampaignID)
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(selectFields(field)...).
					From("campaign").
					Where(date, campaign),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			buckets := make(map[string]*metricTotals)
			order := make([]string, 0)
			var totals metricTotals
			for _, row := range results[queryMain] {
				if row.Segments == nil {
					continue
				}
				name, ok := label(row.Segments)
				if !ok {
					continue
				}
				bucket, exists := buckets[name]
				if !exists {
					bucket = &metricTotals{}
					buckets[name] = bucket
					order = append(order, name)
				}
				bucket.add(row.Metrics)
				totals.add(row.Metrics)
			}

			rows := make([][]any, 0, len(order))
			for _, name := range order {
				rows = append(rows, bucketRow(name, buckets[name]))
			}
			return &domain.ReportPayload{Rows: rows, Summary: totals.summary()}
		},
	}
}

// bucketRow renders one aggregated breakdown row.
func bucketRow(label any, t *metricTotals) []any {
	return []any{
		label,
		t.clicks,
		t.impressions,
		utils.RoundMetric(t.cost),
		utils.Percentage(float64(t.clicks), float64(t.impressions)),
		utils.RoundWithTwoDecimalPlace(utils.SafeDiv(t.cost, float64(t.clicks))),
		utils.RoundMetric(t.conversions),
		utils.RoundMetric(t.conversionsValue),
	}
}

// changeEventDays is the trailing window the change_event resource tolerates.
const changeEventDays = 14

func changeHistoryDefinition() *Definition {
	return &Definition{
		Key:             KeyChangeHistory,
		Title:           "Recent changes",
		Headers:         []string{"When", "Resource", "Operation", "Client", "User"},
		SummaryKeys:     []string{"changes"},
		ClampDays:       changeEventDays,
		OnUpstreamError: DegradeEmpty,
		Queries: func(bc BuildContext) []QuerySpec {
			// change_event rejects presets and long ranges; the executor has
			// already clamped the window to an explicit trailing range.
			return []QuerySpec{{
				Name: queryMain,
				Query: gaql.Select(
					"change_event.change_date_time",
					"change_event.change_resource_type",
					"change_event.resource_change_operation",
					"change_event.client_type",
					"change_event.user_email",
				).
					From("change_event").
					Where(gaql.Between("change_event.change_date_time", bc.Window.Start, bc.Window.End)).
					OrderBy("change_event.change_date_time DESC").
					Limit(bc.Limit),
			}}
		},
		Map: func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload {
			rows := make([][]any, 0, len(results[queryMain]))
			for _, row := range results[queryMain] {
				if row.ChangeEvent == nil {
					continue
				}
				event := row.ChangeEvent
				rows = append(rows, []any{
					event.ChangeDateTime,
					event.ChangeResourceType,
					event.ResourceChangeOperation,
					event.ClientType,
					strings.TrimSpace(event.UserEmail),
				})
			}
			return &domain.ReportPayload{
				Rows:    rows,
				Summary: map[string]float64{"changes": float64(len(rows))},
			}
		},
	}
}
