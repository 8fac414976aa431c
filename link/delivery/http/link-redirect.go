package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	"github.com/superj80820/link-shortener/kit/code"
	httpKit "github.com/superj80820/link-shortener/kit/http"
	httpMiddlewareKit "github.com/superj80820/link-shortener/kit/http/middleware"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var DecodeLinkRedirectRequest = DecodeLinkCodeRequest

type linkRedirectResponse struct {
	code.SuccessCode
	Location string
}

// MakeLinkRedirectEndpoint answers 301 when permanent, else 302.
func MakeLinkRedirectEndpoint(svc domain.LinkUseCase, clickUseCase domain.ClickUseCase, permanent bool) endpoint.Endpoint {
	status := http.StatusFound
	if permanent {
		status = http.StatusMovedPermanently
	}
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(linkCodeRequest)
		destination, err := svc.Resolve(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		clickUseCase.Record(ctx, &domain.ClickEvent{
			Code:    req.Code,
			Referer: httpKit.GetReferer(ctx),
			Country: httpKit.GetCountry(ctx),
		})
		return linkRedirectResponse{SuccessCode: code.CreateSuccessCode(status), Location: destination}, nil
	}
}

func EncodeLinkRedirectResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(linkRedirectResponse)
	w.Header().Set("Location", res.Location)
	w.Header().Set("Cache-Control", "no-cache")
	return httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(httpTransportKit.EncodeEmptyResponse)(ctx, w, response)
}

// MakeEncodeLinkRedirectError sends browsers back to the home page with the
// failure in the query string. API clients get next's JSON error.
func MakeEncodeLinkRedirectError(next func(ctx context.Context, err error, w http.ResponseWriter)) func(ctx context.Context, err error, w http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if !httpKit.AcceptHTML(ctx) {
			next(ctx, err, w)
			return
		}

		var reason string
		switch {
		case code.IsHTTPCode(err, http.StatusNotFound):
			reason = "notfound"
		case code.IsHTTPCode(err, http.StatusGone):
			reason = "expired"
		default:
			next(ctx, err, w)
			return
		}

		httpKit.CustomAfterCtx(ctx, w)
		query := url.Values{}
		query.Set("error", reason)
		query.Set("code", strings.ToLower(strings.TrimPrefix(httpKit.GetURL(ctx), "/")))
		w.Header().Set("Location", "/?"+query.Encode())
		w.WriteHeader(http.StatusFound)
	}
}
