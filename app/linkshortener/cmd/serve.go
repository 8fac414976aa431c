package cmd

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	mqKit "github.com/superj80820/link-shortener/kit/mq"
	kafkaMQKit "github.com/superj80820/link-shortener/kit/mq/kafka"
	memoryMQKit "github.com/superj80820/link-shortener/kit/mq/memory"
	redisRateLimitKit "github.com/superj80820/link-shortener/kit/ratelimit/redis"
	kafkaContainer "github.com/superj80820/link-shortener/kit/testing/kafka/container"
	traceKit "github.com/superj80820/link-shortener/kit/trace"
	"github.com/superj80820/link-shortener/link/delivery/background"
	"github.com/superj80820/link-shortener/link/usecase/click"
	"github.com/superj80820/link-shortener/link/usecase/health"
	"go.opentelemetry.io/otel/trace"
)

const (
	messageChannelBuffer   = 1000
	messageCollectDuration = time.Second
	rateLimitWindowSeconds = 3600
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the http server with its background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inf, err := setupInfra(ctx, cfg, true)
	if err != nil {
		return errors.Wrap(err, "setup infra failed")
	}
	defer inf.close()
	logger := inf.logger

	var tracer trace.Tracer
	if cfg.enableTracer {
		var shutdownTracer traceKit.ShutdownFunc
		tracer, shutdownTracer, err = traceKit.CreateTracer(ctx, SYSTEM_NAME+"-"+SERVICE_NAME, cfg.version)
		if err != nil {
			return errors.Wrap(err, "create tracer failed")
		}
		defer shutdownTracer(context.Background())
	} else {
		tracer = traceKit.CreateNoOpTracer()
	}

	clickMQTopic, err := createClickMQTopic(ctx, inf)
	if err != nil {
		return errors.Wrap(err, "create click topic failed")
	}

	repositories, err := createRepos(inf, cfg, clickMQTopic)
	if err != nil {
		return errors.Wrap(err, "create repos failed")
	}
	linkUseCase := createLinkUseCase(repositories, cfg, logger)
	apiKeyUseCase := createAPIKeyUseCase(repositories, cfg, logger)
	clickUseCase := click.CreateClickUseCase(repositories.link, repositories.click, logger)
	healthUseCase := health.CreateHealthUseCase(inf.db, inf.cache, cfg.version, logger)

	if synced, err := linkUseCase.SyncCodes(ctx); err != nil {
		logger.Warn("sync used codes failed", loggerKit.Error(err))
	} else {
		logger.Info("used codes synced", loggerKit.Int("codes", synced))
	}

	rateLimit := redisRateLimitKit.CreateCacheRateLimit(inf.cache, rateLimitWindowSeconds)
	handler := createHTTPHandler(cfg, handlerDeps{
		logger:        logger,
		tracer:        tracer,
		linkUseCase:   linkUseCase,
		apiKeyUseCase: apiKeyUseCase,
		clickUseCase:  clickUseCase,
		healthUseCase: healthUseCase,
		rateLimitPass: rateLimit.PassWithLimit,
	})

	g := new(run.Group)
	{
		httpSrv := http.Server{
			Addr:              cfg.httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(func() error {
			logger.Info("http server start", loggerKit.String("addr", cfg.httpAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "http server failed")
			}
			return nil
		}, func(err error) {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpSrv.Shutdown(shutdownCtx)
		})
	}
	{
		maintenanceCtx, maintenanceCancel := context.WithCancel(ctx)
		g.Add(func() error {
			return background.RunLinkMaintenance(maintenanceCtx, linkUseCase, cfg.cleanupInterval, logger)
		}, func(err error) {
			maintenanceCancel()
		})
	}
	{
		clickCtx, clickCancel := context.WithCancel(ctx)
		g.Add(func() error {
			return background.RunClickCounter(clickCtx, clickUseCase)
		}, func(err error) {
			repositories.click.Shutdown()
			clickCancel()
		})
	}
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var signalErr run.SignalError
		if errors.As(err, &signalErr) {
			logger.Info("server stopped", loggerKit.String("signal", signalErr.Signal.String()))
			return nil
		}
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

func createClickMQTopic(ctx context.Context, inf *infra) (mqKit.MQTopic, error) {
	if !cfg.enableKafka {
		return memoryMQKit.CreateMemoryMQ(ctx, messageChannelBuffer, messageCollectDuration), nil
	}

	kafkaURI := cfg.kafkaURI
	if kafkaURI == "" {
		container, err := kafkaContainer.CreateKafka(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "create kafka container failed")
		}
		inf.closers = append(inf.closers, func() { container.Terminate(context.Background()) })
		kafkaURI = container.GetURI()

		inf.logger.Info("testcontainers kafka uri: " + kafkaURI)
	}

	clickMQTopic, err := kafkaMQKit.CreateMQTopic(
		ctx,
		kafkaURI,
		cfg.clickTopicName,
		kafkaMQKit.ConsumeByGroupID(SYSTEM_NAME+"-"+SERVICE_NAME+"-click-counter"),
		kafkaMQKit.BatchConsume(500, messageCollectDuration),
		kafkaMQKit.CreateTopic(1, 1),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka topic failed")
	}
	return clickMQTopic, nil
}
