package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

var instrumentings = make(map[string]*instrumentingMiddleware)

func getInstrumenting(namespace, subsystem string) *instrumentingMiddleware {
	key := namespace + "_" + subsystem
	if instrumenting, ok := instrumentings[key]; ok {
		return instrumenting
	}
	fieldKeys := []string{"method", "error"}
	instrumenting := &instrumentingMiddleware{
		requestCount: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys),
		requestLatency: kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys),
	}
	instrumentings[key] = instrumenting
	return instrumenting
}

// CreateMetrics labels by endpoint name rather than path so codes in the
// url do not explode the label cardinality. Call it from a single goroutine
// at wiring time.
func CreateMetrics(namespace, subsystem, name string) endpoint.Middleware {
	instrumenting := getInstrumenting(namespace, subsystem)

	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				lvs := []string{"method", name, "error", fmt.Sprint(err != nil)}
				instrumenting.requestCount.With(lvs...).Add(1)
				instrumenting.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
			}(time.Now())
			return next(ctx, request)
		}
	}
}
