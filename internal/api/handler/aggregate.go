package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/usecases/aggregating"
	"github.com/vfg2006/ads-insights-api/pkg/apiErrors"
	"github.com/vfg2006/ads-insights-api/pkg/log"
	"github.com/vfg2006/ads-insights-api/pkg/middleware"
)

// aggregateResponse is the envelope of the composite report routes. Ready is
// false only for check-only misses.
type aggregateResponse struct {
	Ready     bool           `json:"ready"`
	FromCache bool           `json:"fromCache,omitempty"`
	Report    *domain.Bundle `json:"report,omitempty"`
}

// GenerateAggregate serves POST /v1/reports/ai-analysis and
// POST /v1/reports/weekly.
func GenerateAggregate(service aggregating.Service, kind domain.ReportKind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, params, ok := decodeReportRequest(w, r)
		if !ok {
			return
		}

		identity := middleware.UserIDFromContext(r.Context())
		opts := aggregating.Options{
			ForceRegenerate: req.ForceRegenerate,
			CheckOnly:       req.CheckOnly,
			DataOnly:        req.DataOnly,
		}

		logger.WithFields(log.Fields{
			"report_kind":      string(kind),
			"customer_id":      params.CustomerID,
			"time_range":       params.TimeRange,
			"force_regenerate": opts.ForceRegenerate,
			"check_only":       opts.CheckOnly,
		}).Info("reports: generating aggregate report")

		outcome, err := service.Generate(r.Context(), identity, params, kind, opts)
		if err != nil {
			writeAggregateError(w, r, kind, err)
			return
		}

		if outcome.Status == aggregating.StatusNotReady {
			writeJSON(w, r, aggregateResponse{Ready: false})
			return
		}

		writeJSON(w, r, aggregateResponse{
			Ready:     true,
			FromCache: outcome.Status == aggregating.StatusCached,
			Report:    outcome.Bundle,
		})
	})
}

func writeAggregateError(w http.ResponseWriter, r *http.Request, kind domain.ReportKind, err error) {
	logger := log.ForContext(r.Context())

	var limitErr *aggregating.LimitExceededError
	if errors.As(err, &limitErr) {
		apiErrors.WriteError(w, apiErrors.ErrLimitReached, limitErr.Error(), limitErr.Status)
		return
	}

	var constituentErr *aggregating.ConstituentError
	if errors.As(err, &constituentErr) {
		logger.WithFields(log.Fields{
			"report_kind":   string(kind),
			"failed_blocks": constituentErr.Failed,
		}).Error("reports: aggregate generation failed")

		apiErrors.WriteError(w, apiErrors.ErrAggregateFailed, constituentErr.Error(),
			map[string]any{"failed": constituentErr.Failed})
		return
	}

	if errors.Is(err, aggregating.ErrSummarizer) {
		logger.WithField("report_kind", string(kind)).Error("reports: summarization failed")
		apiErrors.WriteError(w, apiErrors.ErrSummarizer, "report summarization failed", nil)
		return
	}

	logger.WithFields(log.Fields{
		"report_kind": string(kind),
		"error":       err.Error(),
	}).Error("reports: aggregate generation error")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "failed to generate report", nil)
}
