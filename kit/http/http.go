package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/superj80820/link-shortener/kit/code"
	utilKit "github.com/superj80820/link-shortener/kit/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKeyType int

const (
	_CTX_IP_KEY ctxKeyType = iota
	_CTX_METHOD
	_CTX_URL_PATH
	_CTX_TRACE_ID
	_CTX_SPAN
	_CTX_TOKEN
	_CTX_REQUEST_ID
	_CTX_USER_AGENT
	_CTX_ACCEPT
	_CTX_REFERER
	_CTX_COUNTRY
	_CTX_CAPTCHA_TOKEN
	_CTX_API_KEY_ID
	_CTX_RATE_LIMIT
)

// ReadUserIP prefers proxy headers set by Cloudflare, then the first hop of
// X-Forwarded-For, then X-Real-Ip, then the socket address.
func ReadUserIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		if ip := strings.TrimSpace(strings.Split(forwardedFor, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ReadToken accepts X-API-Key or a bearer Authorization header.
func ReadToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get("X-API-Key")); token != "" {
		return token
	}
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authorization) > 7 && strings.EqualFold(authorization[:7], "bearer ") {
		return strings.TrimSpace(authorization[7:])
	}
	return ""
}

func CustomBeforeCtx(tracer trace.Tracer) func(ctx context.Context, r *http.Request) context.Context {
	return func(ctx context.Context, r *http.Request) context.Context {
		ctx = AddToken(ctx, ReadToken(r))
		ctx = context.WithValue(ctx, _CTX_METHOD, r.Method)
		ctx = context.WithValue(ctx, _CTX_URL_PATH, r.URL.Path)
		ctx = AddIP(ctx, ReadUserIP(r))
		ctx = context.WithValue(ctx, _CTX_USER_AGENT, r.UserAgent())
		ctx = context.WithValue(ctx, _CTX_ACCEPT, r.Header.Get("Accept"))
		ctx = context.WithValue(ctx, _CTX_REFERER, r.Referer())
		ctx = context.WithValue(ctx, _CTX_COUNTRY, r.Header.Get("CF-IPCountry"))
		ctx = context.WithValue(ctx, _CTX_CAPTCHA_TOKEN, r.Header.Get("CF-Turnstile-Response"))
		ctx = AddRequestID(ctx)

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		ctx = context.WithValue(ctx, _CTX_SPAN, span)

		ctx = AddTraceID(ctx, span.SpanContext().TraceID().String())

		return ctx
	}
}

func CustomAfterCtx(ctx context.Context, w http.ResponseWriter) context.Context {
	w.Header().Set("X-B3-TraceId", trace.SpanContextFromContext(ctx).TraceID().String())
	if requestID := GetRequestID(ctx); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	return ctx
}

// EndSpan is a go-kit server finalizer closing the span opened in CustomBeforeCtx.
func EndSpan(ctx context.Context, code int, r *http.Request) {
	span, ok := ctx.Value(_CTX_SPAN).(trace.Span)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", code))
	span.End()
}

func getString(ctx context.Context, key ctxKeyType) string {
	value, _ := ctx.Value(key).(string)
	return value
}

func GetTraceID(ctx context.Context) string {
	return getString(ctx, _CTX_TRACE_ID)
}

func AddTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, _CTX_TRACE_ID, traceID)
}

func GetIP(ctx context.Context) string {
	return getString(ctx, _CTX_IP_KEY)
}

func AddIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, _CTX_IP_KEY, ip)
}

func GetURL(ctx context.Context) string {
	return getString(ctx, _CTX_URL_PATH)
}

func GetMethod(ctx context.Context) string {
	return getString(ctx, _CTX_METHOD)
}

func GetUserAgent(ctx context.Context) string {
	return getString(ctx, _CTX_USER_AGENT)
}

func GetAccept(ctx context.Context) string {
	return getString(ctx, _CTX_ACCEPT)
}

func GetReferer(ctx context.Context) string {
	return getString(ctx, _CTX_REFERER)
}

func GetCountry(ctx context.Context) string {
	return getString(ctx, _CTX_COUNTRY)
}

func GetCaptchaToken(ctx context.Context) string {
	return getString(ctx, _CTX_CAPTCHA_TOKEN)
}

func AddToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, _CTX_TOKEN, token)
}

func GetToken(ctx context.Context) string {
	return getString(ctx, _CTX_TOKEN)
}

func AddAPIKey(ctx context.Context, apiKeyID int64, rateLimit int) context.Context {
	ctx = context.WithValue(ctx, _CTX_API_KEY_ID, apiKeyID)
	return context.WithValue(ctx, _CTX_RATE_LIMIT, rateLimit)
}

// GetAPIKeyID returns 0 for anonymous requests.
func GetAPIKeyID(ctx context.Context) int64 {
	value, _ := ctx.Value(_CTX_API_KEY_ID).(int64)
	return value
}

func GetRateLimit(ctx context.Context) int {
	value, _ := ctx.Value(_CTX_RATE_LIMIT).(int)
	return value
}

// AddRequestID leaves the request id empty when no generator is available.
func AddRequestID(ctx context.Context) context.Context {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return ctx
	}
	return context.WithValue(ctx, _CTX_REQUEST_ID, uniqueIDGenerate.Generate().GetBase62())
}

func GetRequestID(ctx context.Context) string {
	return getString(ctx, _CTX_REQUEST_ID)
}

// AcceptHTML reports whether the client is a browser expecting a page.
func AcceptHTML(ctx context.Context) bool {
	return strings.Contains(GetAccept(ctx), "text/html")
}

func EncodeHTTPErrorResponse() func(ctx context.Context, err error, w http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			panic("encodeError with nil error")
		}

		ctx = CustomAfterCtx(ctx, w)

		errorCode := code.ParseErrorCode(err)

		for key, values := range errorCode.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(errorCode.HTTPCode)
		json.NewEncoder(w).Encode(errorCode)
	}
}
