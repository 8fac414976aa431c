package middleware

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"
	httpKit "github.com/superj80820/link-shortener/kit/http"
)

type APIKeyAuthFunc func(ctx context.Context, token string) (apiKeyID int64, rateLimit int, err error)

// CreateAPIKeyMiddleware authenticates a request only when it carries a
// token. Requests without one continue anonymously.
func CreateAPIKeyMiddleware(authFunc APIKeyAuthFunc) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token := httpKit.GetToken(ctx)
			if token == "" {
				return e(ctx, request)
			}
			apiKeyID, rateLimit, err := authFunc(ctx, token)
			if err != nil {
				return nil, errors.Wrap(err, "auth api key failed")
			}
			return e(httpKit.AddAPIKey(ctx, apiKeyID, rateLimit), request)
		}
	}
}
