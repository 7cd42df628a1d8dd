package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/ads-insights-api/internal/scheduler"
	"github.com/vfg2006/ads-insights-api/pkg/apiErrors"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// CronJobServices groups the background jobs exposed for manual triggering.
type CronJobServices struct {
	UsageRetentionService *scheduler.UsageRetentionService
}

// RunCronJob serves POST /v1/cron/:type/run.
func RunCronJob(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		jobType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		logger.WithField("job_type", jobType).Info("cron: manual trigger requested")

		switch jobType {
		case "usage-retention":
			services.UsageRetentionService.TriggerManualRun()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "unknown cron job type: "+jobType, nil)
			return
		}

		writeJSON(w, r, map[string]string{"status": "triggered", "job": jobType})
	})
}

// GetCronStatus serves GET /v1/cron/status.
func GetCronStatus(services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, map[string]any{
			"usage_retention": services.UsageRetentionService.GetStatus(),
		})
	})
}
