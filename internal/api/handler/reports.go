package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/usecases/aggregating"
	"github.com/vfg2006/ads-insights-api/internal/usecases/reporting"
	"github.com/vfg2006/ads-insights-api/pkg/apiErrors"
	"github.com/vfg2006/ads-insights-api/pkg/log"
	"github.com/vfg2006/ads-insights-api/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReportRunner runs one report definition. Satisfied by *reporting.Executor.
type ReportRunner interface {
	Run(ctx context.Context, params domain.ReportParams, def *reporting.Definition, mode domain.ReportMode) (*domain.ReportPayload, error)
}

// reportRequest is the shared request envelope of every report route.
type reportRequest struct {
	AccessToken     string `json:"accessToken"`
	AccountID       string `json:"accountId"`
	TimeRange       string `json:"timeRange,omitempty"`
	CampaignID      string `json:"campaignId,omitempty"`
	ForceRegenerate bool   `json:"forceRegenerate,omitempty"`
	CheckOnly       bool   `json:"checkOnly,omitempty"`
	DataOnly        bool   `json:"dataOnly,omitempty"`
}

// decodeReportRequest decodes and validates the shared envelope. Validation
// happens once here, never per report definition. Returns false after having
// written the error response.
func decodeReportRequest(w http.ResponseWriter, r *http.Request) (*reportRequest, domain.ReportParams, bool) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "malformed request body", nil)
		return nil, domain.ReportParams{}, false
	}

	if strings.TrimSpace(req.AccessToken) == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingAccessToken, "accessToken is required", nil)
		return nil, domain.ReportParams{}, false
	}
	if strings.TrimSpace(req.AccountID) == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "accountId is required", nil)
		return nil, domain.ReportParams{}, false
	}

	params := domain.ReportParams{
		AccessToken:     req.AccessToken,
		CustomerID:      req.AccountID,
		TimeRange:       req.TimeRange,
		CampaignID:      req.CampaignID,
		RefreshIdentity: middleware.UserIDFromContext(r.Context()),
	}

	return &req, params, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ForContext(r.Context()).WithField("error", err.Error()).Error("reports: failed to encode response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RunReport serves POST /v1/reports/:key. The composite keys dispatch to the
// aggregator; everything else resolves against the report catalog. One
// parameterized route keeps httprouter from seeing conflicting children under
// /v1/reports.
func RunReport(registry *reporting.Registry, runner ReportRunner, aggregator aggregating.Service) http.Handler {
	aiAnalysis := GenerateAggregate(aggregator, domain.KindAIAnalysis)
	weekly := GenerateAggregate(aggregator, domain.KindWeekly)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		key := httprouter.ParamsFromContext(r.Context()).ByName("key")
		switch key {
		case string(domain.KindAIAnalysis):
			aiAnalysis.ServeHTTP(w, r)
			return
		case string(domain.KindWeekly):
			weekly.ServeHTTP(w, r)
			return
		}

		def, ok := registry.Get(key)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrUnknownReport, "unknown report key: "+key, nil)
			return
		}

		_, params, ok := decodeReportRequest(w, r)
		if !ok {
			return
		}

		logger.WithFields(log.Fields{
			"report_key":  key,
			"customer_id": params.CustomerID,
			"time_range":  params.TimeRange,
		}).Info("reports: running report")

		payload, err := runner.Run(r.Context(), params, def, domain.ModeFull)
		if err != nil {
			writeReportError(w, r, key, err)
			return
		}

		writeJSON(w, r, payload)
	})
}

func writeReportError(w http.ResponseWriter, r *http.Request, key string, err error) {
	logger := log.ForContext(r.Context())

	var upstreamErr *reporting.UpstreamError
	if errors.As(err, &upstreamErr) {
		logger.WithFields(log.Fields{
			"report_key":  key,
			"status_code": upstreamErr.StatusCode,
		}).Error("reports: upstream failure")

		if upstreamErr.StatusCode == http.StatusUnauthorized {
			apiErrors.WriteError(w, apiErrors.ErrUpstreamAuth, "access token rejected and refresh failed", nil)
			return
		}
		apiErrors.WriteError(w, apiErrors.ErrExternalService, upstreamErr.Error(), nil)
		return
	}

	logger.WithFields(log.Fields{
		"report_key": key,
		"error":      err.Error(),
	}).Error("reports: failed to run report")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "failed to run report", nil)
}

type reportListEntry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// ListReports serves GET /v1/reports, the dashboard menu source.
func ListReports(registry *reporting.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := registry.Keys()
		entries := make([]reportListEntry, 0, len(keys))
		for _, key := range keys {
			def, ok := registry.Get(key)
			if !ok {
				continue
			}
			entries = append(entries, reportListEntry{Key: def.Key, Title: def.Title})
		}

		writeJSON(w, r, map[string]any{"reports": entries})
	})
}
