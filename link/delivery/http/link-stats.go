package http

import (
	"context"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var (
	DecodeLinkStatsRequest  = DecodeLinkCodeRequest
	EncodeLinkStatsResponse = httpTransportKit.EncodeJsonResponse
)

type LinkStatsResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	IsActive    bool       `json:"is_active"`
}

func MakeLinkStatsEndpoint(svc domain.LinkUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(linkCodeRequest)
		stats, err := svc.GetStats(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		return &LinkStatsResponse{
			ShortCode:   stats.Code,
			ShortURL:    stats.ShortURL,
			OriginalURL: stats.Destination,
			ClickCount:  stats.ClickCount,
			CreatedAt:   stats.CreatedAt,
			ExpiresAt:   stats.ExpiresAt,
			IsActive:    stats.IsActive,
		}, nil
	}
}
