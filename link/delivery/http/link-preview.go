package http

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var (
	DecodeLinkPreviewRequest  = DecodeLinkCodeRequest
	EncodeLinkPreviewResponse = httpTransportKit.EncodeJsonResponse
)

type LinkPreviewResponse struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	IsSafe      bool   `json:"is_safe"`
	Warning     string `json:"warning,omitempty"`
}

func MakeLinkPreviewEndpoint(svc domain.LinkUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(linkCodeRequest)
		preview, err := svc.Preview(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		return &LinkPreviewResponse{
			ShortCode:   preview.Code,
			OriginalURL: preview.Destination,
			IsSafe:      preview.IsSafe,
			Warning:     preview.Warning,
		}, nil
	}
}
