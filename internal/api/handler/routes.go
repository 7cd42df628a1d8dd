package handler

import (
	"net/http"

	"github.com/vfg2006/ads-insights-api/internal/api/handler/router"
	"github.com/vfg2006/ads-insights-api/internal/usecases/aggregating"
	"github.com/vfg2006/ads-insights-api/internal/usecases/reporting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

// Reports exposes the catalog listing and the report execution route. The
// composite kinds (ai-analysis, weekly) share the parameterized route and are
// dispatched inside RunReport.
func Reports(registry *reporting.Registry, runner ReportRunner, aggregator aggregating.Service) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/reports",
			Method:  http.MethodGet,
			Handler: ListReports(registry),
		},
		{
			Path:    "/v1/reports/:key",
			Method:  http.MethodPost,
			Handler: RunReport(registry, runner, aggregator),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
