package http

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var (
	DecodeLinkCheckRequest  = DecodeLinkCodeRequest
	EncodeLinkCheckResponse = httpTransportKit.EncodeJsonResponse
)

type LinkCheckResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func MakeLinkCheckEndpoint(svc domain.LinkUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(linkCodeRequest)
		availability, err := svc.CheckCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		return &LinkCheckResponse{Available: availability.Available, Reason: string(availability.Reason)}, nil
	}
}
