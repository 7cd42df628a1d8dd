package reporting

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/gadsclient"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/gadsclient/mocks"
	"github.com/vfg2006/ads-insights-api/internal/domain"
)

func okResult(rows ...adsdomain.Row) *gadsclient.SearchResult {
	return &gadsclient.SearchResult{
		StatusCode: http.StatusOK,
		Response:   &adsdomain.SearchResponse{Results: rows},
	}
}

func testParams() domain.ReportParams {
	return domain.ReportParams{
		AccessToken: "t",
		CustomerID:  "123",
		TimeRange:   "7days",
	}
}

func TestExecutor_EmptyUpstreamYieldsZeroedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(okResult(), nil)

	executor := NewExecutor(mockClient, DefaultRowLimits())

	payload, err := executor.Run(context.Background(), testParams(), campaignsDefinition(), domain.ModeFull)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, KeyCampaigns, payload.Key)
	assert.NotNil(t, payload.Rows)
	assert.Empty(t, payload.Rows)
	require.NotNil(t, payload.Summary)
	for _, key := range summaryKeys {
		value, ok := payload.Summary[key]
		assert.True(t, ok, "summary must carry %q even with no data", key)
		assert.Zero(t, value)
	}
}

func TestExecutor_MapsCampaignRowsAndTotals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(okResult(
			adsdomain.Row{
				Campaign: &adsdomain.Campaign{Name: "Brand", Status: "ENABLED", AdvertisingChannelType: "SEARCH"},
				Metrics: &adsdomain.Metrics{
					ClicksRaw:      "100",
					ImpressionsRaw: "1000",
					CostMicros:     "50000000",
					Conversions:    4,
				},
			},
			adsdomain.Row{
				Campaign: &adsdomain.Campaign{Name: "Generic", Status: "PAUSED", AdvertisingChannelType: "SEARCH"},
				Metrics: &adsdomain.Metrics{
					ClicksRaw:      "50",
					ImpressionsRaw: "500",
					CostMicros:     "25000000",
					Conversions:    1,
				},
			},
		), nil)

	executor := NewExecutor(mockClient, DefaultRowLimits())

	payload, err := executor.Run(context.Background(), testParams(), campaignsDefinition(), domain.ModeFull)
	require.NoError(t, err)

	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "Brand", payload.Rows[0][0])
	assert.Equal(t, float64(150), payload.Summary["clicks"])
	assert.Equal(t, float64(1500), payload.Summary["impressions"])
	assert.Equal(t, float64(75), payload.Summary["cost"])
	assert.Equal(t, float64(10), payload.Summary["ctr"])
	assert.Equal(t, 0.5, payload.Summary["avg_cpc"])
	assert.Equal(t, float64(5), payload.Summary["conversions"])
	assert.Equal(t, float64(15), payload.Summary["cost_per_conversion"])
}

func TestExecutor_DegradeEmptyOnUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(&gadsclient.SearchResult{StatusCode: http.StatusInternalServerError}, nil)

	executor := NewExecutor(mockClient, DefaultRowLimits())

	def := searchTermsDefinition()
	payload, err := executor.Run(context.Background(), testParams(), def, domain.ModeFull)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, def.Headers, payload.Headers)
	assert.Empty(t, payload.Rows)
	for _, key := range def.SummaryKeys {
		assert.Zero(t, payload.Summary[key])
	}
}

func TestExecutor_FailLoudOnUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(&gadsclient.SearchResult{
			StatusCode: http.StatusForbidden,
			ErrorBody: &adsdomain.ErrorResponse{
				Error: adsdomain.ErrorDetails{Message: "developer token not approved"},
			},
		}, nil)

	executor := NewExecutor(mockClient, DefaultRowLimits())

	payload, err := executor.Run(context.Background(), testParams(), campaignsDefinition(), domain.ModeFull)
	assert.Nil(t, payload)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, KeyCampaigns, upstreamErr.ReportKey)
	assert.Equal(t, http.StatusForbidden, upstreamErr.StatusCode)
	assert.Contains(t, upstreamErr.Message, "developer token")
}

func TestExecutor_TransportErrorIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset"))

	executor := NewExecutor(mockClient, DefaultRowLimits())

	// DegradeEmpty must not swallow local failures; only upstream HTTP
	// failures degrade.
	payload, err := executor.Run(context.Background(), testParams(), searchTermsDefinition(), domain.ModeFull)
	assert.Nil(t, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestExecutor_ChangeHistoryClampsWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	restore := timeNow
	timeNow = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	defer func() { timeNow = restore }()

	var gotQuery string
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gadsclient.SearchRequest) (*gadsclient.SearchResult, error) {
			gotQuery = req.Query
			return okResult(), nil
		})

	executor := NewExecutor(mockClient, DefaultRowLimits())

	params := testParams()
	params.TimeRange = "LAST_30_DAYS" // must be overridden by the clamp

	_, err := executor.Run(context.Background(), params, changeHistoryDefinition(), domain.ModeFull)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "change_event.change_date_time BETWEEN '2024-06-01' AND '2024-06-15'")
	assert.NotContains(t, gotQuery, "DURING")
}

func TestExecutor_SearchTermGapCrossReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gadsclient.SearchRequest) (*gadsclient.SearchResult, error) {
			if strings.Contains(req.Query, "FROM search_term_view") {
				return okResult(
					adsdomain.Row{
						SearchTermView: &adsdomain.SearchTermView{SearchTerm: "Blue Shoes "},
						Metrics:        &adsdomain.Metrics{ClicksRaw: "10", ImpressionsRaw: "100"},
					},
					adsdomain.Row{
						SearchTermView: &adsdomain.SearchTermView{SearchTerm: "red hats"},
						Metrics:        &adsdomain.Metrics{ClicksRaw: "5", ImpressionsRaw: "50"},
					},
				), nil
			}
			return okResult(
				adsdomain.Row{
					AdGroupCriterion: &adsdomain.AdGroupCriterion{
						Keyword: &adsdomain.KeywordInfo{Text: "  blue shoes"},
					},
				},
			), nil
		}).
		Times(2)

	executor := NewExecutor(mockClient, DefaultRowLimits())

	payload, err := executor.Run(context.Background(), testParams(), searchTermGapDefinition(), domain.ModeFull)
	require.NoError(t, err)

	// "Blue Shoes " matches the keyword "  blue shoes" after normalization,
	// so only the uncovered term remains.
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "red hats", payload.Rows[0][0])
	assert.Equal(t, float64(5), payload.Summary["clicks"])
}
