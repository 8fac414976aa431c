package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

type pingerFunc func(ctx context.Context) error

func (p pingerFunc) Ping(ctx context.Context) error {
	return p(ctx)
}

func TestHealthCheck(t *testing.T) {
	ok := pingerFunc(func(ctx context.Context) error { return nil })
	down := pingerFunc(func(ctx context.Context) error { return assert.AnError })

	testCases := []struct {
		scenario string
		database Pinger
		cache    Pinger
		expected *domain.Health
	}{
		{"all up", ok, ok, &domain.Health{Status: domain.HealthStatusHealthy, Database: true, Redis: true, Version: "1.2.3"}},
		{"database down", down, ok, &domain.Health{Status: domain.HealthStatusDegraded, Database: false, Redis: true, Version: "1.2.3"}},
		{"redis down", ok, down, &domain.Health{Status: domain.HealthStatusDegraded, Database: true, Redis: false, Version: "1.2.3"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.scenario, func(t *testing.T) {
			healthUseCase := CreateHealthUseCase(testCase.database, testCase.cache, "1.2.3", loggerKit.CreateNoOpLogger())
			assert.Equal(t, testCase.expected, healthUseCase.Check(context.Background()))
		})
	}
}
