package health

import (
	"context"
	"time"

	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthUseCase struct {
	database Pinger
	cache    Pinger
	version  string
	timeout  time.Duration
	logger   *loggerKit.Logger
}

func CreateHealthUseCase(database, cache Pinger, version string, logger *loggerKit.Logger) domain.HealthUseCase {
	return &healthUseCase{
		database: database,
		cache:    cache,
		version:  version,
		timeout:  2 * time.Second,
		logger:   logger,
	}
}

func (h *healthUseCase) Check(ctx context.Context) *domain.Health {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	health := &domain.Health{
		Status:   domain.HealthStatusHealthy,
		Database: h.ping(ctx, "database", h.database),
		Redis:    h.ping(ctx, "redis", h.cache),
		Version:  h.version,
	}
	if !health.Database || !health.Redis {
		health.Status = domain.HealthStatusDegraded
	}

	return health
}

func (h *healthUseCase) ping(ctx context.Context, name string, pinger Pinger) bool {
	if err := pinger.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", loggerKit.String("dependency", name), loggerKit.Error(err))
		return false
	}
	return true
}
