package http

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var (
	DecodeHealthRequest  = httpTransportKit.DecodeEmptyRequest
	EncodeHealthResponse = httpTransportKit.EncodeJsonResponse
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Redis    bool   `json:"redis"`
	Version  string `json:"version"`
}

func MakeHealthEndpoint(svc domain.HealthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		health := svc.Check(ctx)
		return &HealthResponse{
			Status:   string(health.Status),
			Database: health.Database,
			Redis:    health.Redis,
			Version:  health.Version,
		}, nil
	}
}
