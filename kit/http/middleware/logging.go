package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/kit/code"
	httpKit "github.com/superj80820/link-shortener/kit/http"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

func CreateLoggingMiddleware(logger *loggerKit.Logger) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				url := httpKit.GetURL(ctx)

				var (
					errorMsg       string
					errorCallStack string
					httpCode       = code.ParseResponseSuccessCode(response).HTTPCode
				)
				if err != nil {
					errorCode := code.ParseErrorCode(err)
					httpCode = errorCode.HTTPCode
					errorMsg = errorCode.Message
					errorCallStack = fmt.Sprintf("%+v", err)
				}
				loggerWithMetadata := logger.With(
					loggerKit.Int("status", httpCode),
					loggerKit.String("error", errorMsg),
					loggerKit.String("method", httpKit.GetMethod(ctx)),
					loggerKit.String("path", url),
					loggerKit.String("ip", httpKit.GetIP(ctx)),
					loggerKit.String("user-agent", httpKit.GetUserAgent(ctx)),
					loggerKit.String("request-id", httpKit.GetRequestID(ctx)),
					loggerKit.String("trace-id", httpKit.GetTraceID(ctx)),
					loggerKit.Duration("latency", time.Since(begin)),
				)

				if httpCode >= http.StatusInternalServerError {
					loggerWithMetadata.Error(url, loggerKit.String("error-call-stack", errorCallStack))
				} else {
					loggerWithMetadata.Info(url)
				}
			}(time.Now())

			return e(ctx, request)
		}
	}
}
