package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/kit/code"
	traceKit "github.com/superj80820/link-shortener/kit/trace"
)

func TestReadUserIP(t *testing.T) {
	testCases := []struct {
		scenario string
		header   map[string]string
		remote   string
		expected string
	}{
		{
			scenario: "cloudflare header first",
			header:   map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"},
			remote:   "3.3.3.3:1234",
			expected: "1.1.1.1",
		},
		{
			scenario: "first forwarded hop",
			header:   map[string]string{"X-Forwarded-For": "2.2.2.2, 10.0.0.1"},
			remote:   "3.3.3.3:1234",
			expected: "2.2.2.2",
		},
		{
			scenario: "real ip",
			header:   map[string]string{"X-Real-Ip": "4.4.4.4"},
			remote:   "3.3.3.3:1234",
			expected: "4.4.4.4",
		},
		{
			scenario: "remote addr",
			remote:   "3.3.3.3:1234",
			expected: "3.3.3.3",
		},
		{
			scenario: "remote ipv6",
			remote:   "[::1]:1234",
			expected: "::1",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.scenario, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/abc", nil)
			r.RemoteAddr = testCase.remote
			for key, value := range testCase.header {
				r.Header.Set(key, value)
			}
			assert.Equal(t, testCase.expected, ReadUserIP(r))
		})
	}
}

func TestReadToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
	assert.Equal(t, "", ReadToken(r))

	r.Header.Set("Authorization", "Bearer lks_abc")
	assert.Equal(t, "lks_abc", ReadToken(r))

	r.Header.Set("X-API-Key", "lks_def")
	assert.Equal(t, "lks_def", ReadToken(r))
}

func TestCustomBeforeCtx(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/abc1234", nil)
	r.RemoteAddr = "9.9.9.9:80"
	r.Header.Set("Accept", "text/html,application/xhtml+xml")
	r.Header.Set("Referer", "https://news.example.com/post")
	r.Header.Set("CF-IPCountry", "TW")
	r.Header.Set("User-Agent", "test-agent")

	ctx := CustomBeforeCtx(traceKit.CreateNoOpTracer())(context.Background(), r)
	assert.Equal(t, "9.9.9.9", GetIP(ctx))
	assert.Equal(t, "/abc1234", GetURL(ctx))
	assert.Equal(t, http.MethodGet, GetMethod(ctx))
	assert.Equal(t, "TW", GetCountry(ctx))
	assert.Equal(t, "https://news.example.com/post", GetReferer(ctx))
	assert.Equal(t, "test-agent", GetUserAgent(ctx))
	assert.True(t, AcceptHTML(ctx))
	assert.NotEmpty(t, GetRequestID(ctx))
	assert.Equal(t, int64(0), GetAPIKeyID(ctx))

	ctx = AddAPIKey(ctx, 7, 1000)
	assert.Equal(t, int64(7), GetAPIKeyID(ctx))
	assert.Equal(t, 1000, GetRateLimit(ctx))

	w := httptest.NewRecorder()
	CustomAfterCtx(ctx, w)
	assert.Equal(t, GetRequestID(ctx), w.Header().Get("X-Request-Id"))
	EndSpan(ctx, http.StatusOK, r)
}

func TestEncodeHTTPErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	EncodeHTTPErrorResponse()(context.Background(), errors.Wrap(
		code.CreateErrorCode(http.StatusTooManyRequests).AddCode(code.RateLimit, 60).AddHeader("X-RateLimit-Remaining", "0"),
		"rate limit failed",
	), w)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var body map[string]interface{}
	assert.Nil(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(429), body["http_code"])
	assert.Equal(t, "rate limit error. expiry: 60", body["message"])

	w = httptest.NewRecorder()
	EncodeHTTPErrorResponse()(context.Background(), errors.New("db down"), w)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
