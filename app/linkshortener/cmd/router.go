package cmd

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/superj80820/link-shortener/domain"
	httpKit "github.com/superj80820/link-shortener/kit/http"
	httpMiddlewareKit "github.com/superj80820/link-shortener/kit/http/middleware"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	httpDelivery "github.com/superj80820/link-shortener/link/delivery/http"
	"go.opentelemetry.io/otel/trace"
)

type handlerDeps struct {
	logger        *loggerKit.Logger
	tracer        trace.Tracer
	linkUseCase   domain.LinkUseCase
	apiKeyUseCase domain.APIKeyUseCase
	clickUseCase  domain.ClickUseCase
	healthUseCase domain.HealthUseCase
	rateLimitPass httpMiddlewareKit.PassFunc
}

// createHTTPHandler returns the routed api wrapped in CORS. Shorten resolves
// the api key before rate limiting so keyed callers get their own limit.
func createHTTPHandler(cfg config, deps handlerDeps) http.Handler {
	apiKeyMiddleware := httpMiddlewareKit.CreateAPIKeyMiddleware(func(ctx context.Context, token string) (int64, int, error) {
		apiKey, err := deps.apiKeyUseCase.Validate(ctx, token)
		if err != nil {
			return 0, 0, err
		}
		return apiKey.ID, apiKey.RateLimit, nil
	})
	rateLimitMiddleware := httpMiddlewareKit.CreateClientRateLimitMiddleware(
		cfg.rateLimitPerHour,
		deps.rateLimitPass,
		httpMiddlewareKit.FailOpen(deps.logger),
	)
	customMiddleware := func(name string) endpoint.Middleware {
		if !cfg.enableMetric {
			return httpMiddlewareKit.CreateLoggingMiddleware(deps.logger)
		}
		return endpoint.Chain(
			httpMiddlewareKit.CreateLoggingMiddleware(deps.logger),
			httpMiddlewareKit.CreateMetrics(SYSTEM_NAME, SERVICE_NAME, name),
		)
	}

	options := []httptransport.ServerOption{
		httptransport.ServerBefore(httpKit.CustomBeforeCtx(deps.tracer)),
		httptransport.ServerAfter(httpKit.CustomAfterCtx),
		httptransport.ServerErrorEncoder(httpKit.EncodeHTTPErrorResponse()),
		httptransport.ServerFinalizer(httpKit.EndSpan),
	}
	r := mux.NewRouter()
	api := r.PathPrefix("/api/").Subrouter()
	api.Methods("POST").Path("/shorten").Handler(
		httptransport.NewServer(
			customMiddleware("shorten")(apiKeyMiddleware(rateLimitMiddleware(httpDelivery.MakeLinkShortenEndpoint(deps.linkUseCase, cfg.link.MaxExpiryDays)))),
			httpDelivery.DecodeLinkShortenRequest,
			httpDelivery.EncodeLinkShortenResponse,
			options...,
		))
	api.Methods("GET").Path("/check/{code}").Handler(
		httptransport.NewServer(
			customMiddleware("check")(httpDelivery.MakeLinkCheckEndpoint(deps.linkUseCase)),
			httpDelivery.DecodeLinkCheckRequest,
			httpDelivery.EncodeLinkCheckResponse,
			options...,
		))
	api.Methods("GET").Path("/stats/{code}").Handler(
		httptransport.NewServer(
			customMiddleware("stats")(httpDelivery.MakeLinkStatsEndpoint(deps.linkUseCase)),
			httpDelivery.DecodeLinkStatsRequest,
			httpDelivery.EncodeLinkStatsResponse,
			options...,
		))
	api.Methods("GET").Path("/preview/{code}").Handler(
		httptransport.NewServer(
			customMiddleware("preview")(httpDelivery.MakeLinkPreviewEndpoint(deps.linkUseCase)),
			httpDelivery.DecodeLinkPreviewRequest,
			httpDelivery.EncodeLinkPreviewResponse,
			options...,
		))
	r.Methods("GET").Path("/health").Handler(
		httptransport.NewServer(
			customMiddleware("health")(httpDelivery.MakeHealthEndpoint(deps.healthUseCase)),
			httpDelivery.DecodeHealthRequest,
			httpDelivery.EncodeHealthResponse,
			options...,
		))
	if cfg.enableMetric {
		r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	}
	if cfg.staticDir != "" {
		r.Methods("GET").PathPrefix("/assets/").Handler(http.FileServer(http.Dir(cfg.staticDir)))
		r.Methods("GET").Path("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(cfg.staticDir, "index.html"))
		})
	}
	r.Methods("GET").Path("/{code}").Handler(
		httptransport.NewServer(
			customMiddleware("redirect")(httpDelivery.MakeLinkRedirectEndpoint(deps.linkUseCase, deps.clickUseCase, cfg.redirectPermanent)),
			httpDelivery.DecodeLinkRedirectRequest,
			httpDelivery.EncodeLinkRedirectResponse,
			append(options, httptransport.ServerErrorEncoder(httpDelivery.MakeEncodeLinkRedirectError(httpKit.EncodeHTTPErrorResponse())))...,
		))

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id", "X-B3-TraceId", "X-RateLimit-Remaining", "Retry-After"},
	}).Handler(r)
}
