// Package adsdomain mirrors the slice of the Google Ads REST search response
// this service consumes. The REST transport renders int64 protobuf fields as
// JSON strings, so those stay strings here with typed accessors.
package adsdomain

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// SearchResponse is the body of a googleAds:search call.
type SearchResponse struct {
	Results       []Row  `json:"results"`
	NextPageToken string `json:"nextPageToken,omitempty"`
	FieldMask     string `json:"fieldMask,omitempty"`
}

// Row is one result row. Only the attributes selected by the query are
// populated; everything else stays nil.
type Row struct {
	Customer         *Customer         `json:"customer,omitempty"`
	Campaign         *Campaign         `json:"campaign,omitempty"`
	CampaignBudget   *CampaignBudget   `json:"campaignBudget,omitempty"`
	AdGroup          *AdGroup          `json:"adGroup,omitempty"`
	AdGroupAd        *AdGroupAd        `json:"adGroupAd,omitempty"`
	AdGroupCriterion *AdGroupCriterion `json:"adGroupCriterion,omitempty"`
	SearchTermView   *SearchTermView   `json:"searchTermView,omitempty"`
	LandingPageView  *LandingPageView  `json:"landingPageView,omitempty"`
	GeographicView   *GeographicView   `json:"geographicView,omitempty"`
	ConversionAction *ConversionAction `json:"conversionAction,omitempty"`
	ChangeEvent      *ChangeEvent      `json:"changeEvent,omitempty"`
	Metrics          *Metrics          `json:"metrics,omitempty"`
	Segments         *Segments         `json:"segments,omitempty"`
}

type Customer struct {
	ID              string `json:"id,omitempty"`
	DescriptiveName string `json:"descriptiveName,omitempty"`
	CurrencyCode    string `json:"currencyCode,omitempty"`
}

type Campaign struct {
	ID                     string `json:"id,omitempty"`
	Name                   string `json:"name,omitempty"`
	Status                 string `json:"status,omitempty"`
	AdvertisingChannelType string `json:"advertisingChannelType,omitempty"`
	BiddingStrategyType    string `json:"biddingStrategyType,omitempty"`
}

type CampaignBudget struct {
	AmountMicros string `json:"amountMicros,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Amount converts the budget from micros to currency units.
func (b *CampaignBudget) Amount() float64 {
	return microsToUnits(b.AmountMicros)
}

type AdGroup struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

type AdGroupAd struct {
	Status string `json:"status,omitempty"`
	Ad     *Ad    `json:"ad,omitempty"`
}

type Ad struct {
	ID                 string              `json:"id,omitempty"`
	Type               string              `json:"type,omitempty"`
	FinalURLs          []string            `json:"finalUrls,omitempty"`
	ResponsiveSearchAd *ResponsiveSearchAd `json:"responsiveSearchAd,omitempty"`
}

type ResponsiveSearchAd struct {
	Headlines    []AdTextAsset `json:"headlines,omitempty"`
	Descriptions []AdTextAsset `json:"descriptions,omitempty"`
}

type AdTextAsset struct {
	Text string `json:"text,omitempty"`
}

type AdGroupCriterion struct {
	CriterionID string       `json:"criterionId,omitempty"`
	Status      string       `json:"status,omitempty"`
	Negative    bool         `json:"negative,omitempty"`
	Keyword     *KeywordInfo `json:"keyword,omitempty"`
	AgeRange    *AgeRange    `json:"ageRange,omitempty"`
	Gender      *Gender      `json:"gender,omitempty"`
	QualityInfo *QualityInfo `json:"qualityInfo,omitempty"`
}

type KeywordInfo struct {
	Text      string `json:"text,omitempty"`
	MatchType string `json:"matchType,omitempty"`
}

type AgeRange struct {
	Type string `json:"type,omitempty"`
}

type Gender struct {
	Type string `json:"type,omitempty"`
}

type QualityInfo struct {
	QualityScore int `json:"qualityScore,omitempty"`
}

type SearchTermView struct {
	SearchTerm string `json:"searchTerm,omitempty"`
	Status     string `json:"status,omitempty"`
}

type LandingPageView struct {
	UnexpandedFinalURL string `json:"unexpandedFinalUrl,omitempty"`
}

type GeographicView struct {
	CountryCriterionID string `json:"countryCriterionId,omitempty"`
	LocationType       string `json:"locationType,omitempty"`
}

type ConversionAction struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Type     string `json:"type,omitempty"`
}

type ChangeEvent struct {
	ChangeDateTime          string `json:"changeDateTime,omitempty"`
	ChangeResourceType      string `json:"changeResourceType,omitempty"`
	ClientType              string `json:"clientType,omitempty"`
	UserEmail               string `json:"userEmail,omitempty"`
	ResourceChangeOperation string `json:"resourceChangeOperation,omitempty"`
}

// Metrics carries the metric fields selected by a query. Integer metrics
// arrive as strings on the REST transport.
type Metrics struct {
	ClicksRaw             string  `json:"clicks,omitempty"`
	ImpressionsRaw        string  `json:"impressions,omitempty"`
	CostMicros            string  `json:"costMicros,omitempty"`
	Conversions           float64 `json:"conversions,omitempty"`
	ConversionsValue      float64 `json:"conversionsValue,omitempty"`
	CTR                   float64 `json:"ctr,omitempty"`
	AverageCPCMicros      string  `json:"averageCpc,omitempty"`
	SearchImpressionShare float64 `json:"searchImpressionShare,omitempty"`
}

// Clicks converts the raw click count.
func (m *Metrics) Clicks() int64 {
	return parseInt64(m.ClicksRaw, "clicks")
}

// Impressions converts the raw impression count.
func (m *Metrics) Impressions() int64 {
	return parseInt64(m.ImpressionsRaw, "impressions")
}

// Cost converts cost from micros to currency units.
func (m *Metrics) Cost() float64 {
	return microsToUnits(m.CostMicros)
}

// AverageCPC converts the average cost-per-click from micros.
func (m *Metrics) AverageCPC() float64 {
	return microsToUnits(m.AverageCPCMicros)
}

type Segments struct {
	Date          string `json:"date,omitempty"`
	Device        string `json:"device,omitempty"`
	DayOfWeek     string `json:"dayOfWeek,omitempty"`
	Hour          int    `json:"hour,omitempty"`
	AdNetworkType string `json:"adNetworkType,omitempty"`
}

func parseInt64(raw, field string) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": raw,
		}).Warn("ads: could not parse integer metric")
		return 0
	}
	return v
}

func microsToUnits(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logrus.WithField("value", raw).Warn("ads: could not parse micros value")
		return 0
	}
	return float64(v) / 1e6
}
