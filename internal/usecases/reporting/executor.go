package reporting

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/gadsclient"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/gaql"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// Executor runs report definitions against the Ads API.
type Executor struct {
	client gadsclient.Client
	limits RowLimits
}

func NewExecutor(client gadsclient.Client, limits RowLimits) *Executor {
	return &Executor{
		client: client,
		limits: limits,
	}
}

// Run executes one report definition. Independent queries are issued
// concurrently; the outcome is either a complete payload, a deterministic
// empty payload (graceful degradation), or a typed upstream error — never a
// partial table.
func (e *Executor) Run(ctx context.Context, params domain.ReportParams, def *Definition, mode domain.ReportMode) (*domain.ReportPayload, error) {
	logger := log.ForContext(ctx)

	window := gaql.ResolveTimeWindow(params.TimeRange)
	if def.ClampDays > 0 {
		window = gaql.FixedTrailingWindow(def.ClampDays, timeNow())
	}

	bc := BuildContext{
		Params: params,
		Window: window,
		Mode:   mode,
		Limit:  e.limits.For(def.Key, mode),
	}

	specs := def.Queries(bc)

	results := make(map[string][]adsdomain.Row, len(specs))
	var mu sync.Mutex
	var firstFailure *UpstreamError

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			res, err := e.client.Search(gctx, gadsclient.SearchRequest{
				AccessToken:     params.AccessToken,
				CustomerID:      params.CustomerID,
				Query:           spec.Query.Build(),
				RefreshIdentity: params.RefreshIdentity,
			})
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			if !res.OK() {
				message := ""
				if res.ErrorBody != nil {
					message = res.ErrorBody.Error.Message
				}
				if firstFailure == nil {
					firstFailure = &UpstreamError{
						ReportKey:  def.Key,
						QueryName:  spec.Name,
						StatusCode: res.StatusCode,
						Message:    message,
					}
				}
				return nil
			}

			results[spec.Name] = res.Response.Results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Fatal local error (transport, cancellation): not degradable.
		return nil, err
	}

	if firstFailure != nil {
		if def.OnUpstreamError == DegradeEmpty {
			logger.WithFields(log.Fields{
				"report_key":  def.Key,
				"query":       firstFailure.QueryName,
				"status_code": firstFailure.StatusCode,
			}).Warn("reporting: upstream failure, returning empty payload")
			return def.Empty(), nil
		}
		return nil, firstFailure
	}

	payload := def.Map(bc, results)
	payload.Key = def.Key
	payload.Title = def.Title
	payload.Headers = def.Headers

	logger.WithFields(log.Fields{
		"report_key": def.Key,
		"rows":       len(payload.Rows),
	}).Debug("reporting: report built")

	return payload, nil
}

// timeNow is stubbed in tests.
var timeNow = time.Now
