package domain

import "context"

type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

type Health struct {
	Status   HealthStatus
	Database bool
	Redis    bool
	Version  string
}

type HealthUseCase interface {
	Check(ctx context.Context) *Health
}
