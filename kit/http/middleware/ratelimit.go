package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/kit/code"
	httpKit "github.com/superj80820/link-shortener/kit/http"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

type PassFunc func(ctx context.Context, key string, maxRequests int) (pass bool, lastRequests, curExpiry int, err error)

type rateLimitConfig struct {
	failOpen bool
	logger   *loggerKit.Logger
}

type RateLimitOption func(*rateLimitConfig)

// FailOpen lets requests through when the limiter backend errors.
func FailOpen(logger *loggerKit.Logger) RateLimitOption {
	return func(c *rateLimitConfig) {
		c.failOpen = true
		c.logger = logger
	}
}

// CreateClientRateLimitMiddleware counts authenticated api keys against their
// own limit and anonymous callers per ip against anonymousMaxRequests.
func CreateClientRateLimitMiddleware(anonymousMaxRequests int, passFunc PassFunc, options ...RateLimitOption) endpoint.Middleware {
	return createRateLimitMiddleware(func(ctx context.Context) (string, int) {
		if apiKeyID := httpKit.GetAPIKeyID(ctx); apiKeyID != 0 {
			return "apikey:" + strconv.FormatInt(apiKeyID, 10), httpKit.GetRateLimit(ctx)
		}
		return "ip:" + httpKit.GetIP(ctx), anonymousMaxRequests
	}, passFunc, options...)
}

func createRateLimitMiddleware(getKey func(ctx context.Context) (string, int), passFunc PassFunc, options ...RateLimitOption) endpoint.Middleware {
	var config rateLimitConfig
	for _, option := range options {
		option(&config)
	}

	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			key, maxRequests := getKey(ctx)
			pass, _, expiry, err := passFunc(ctx, key, maxRequests)
			if err != nil {
				if !config.failOpen {
					return nil, errors.Wrap(err, "get rate limit failed")
				}
				config.logger.Warn("rate limit unavailable, allow request", loggerKit.String("key", key), loggerKit.Error(err))
				return e(ctx, request)
			}
			if !pass {
				return nil, code.CreateErrorCode(http.StatusTooManyRequests).
					AddCode(code.RateLimit, expiry).
					AddHeader("X-RateLimit-Remaining", "0").
					AddHeader("Retry-After", strconv.Itoa(expiry))
			}
			return e(ctx, request)
		}
	}
}
