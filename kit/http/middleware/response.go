package middleware

import (
	"context"
	"net/http"

	"github.com/superj80820/link-shortener/kit/code"
)

// EncodeResponseSetSuccessHTTPCode writes the status carried by a
// code.SuccessCode response before next encodes the body.
func EncodeResponseSetSuccessHTTPCode(next func(ctx context.Context, w http.ResponseWriter, response interface{}) error) func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		successCode := code.ParseResponseSuccessCode(response)
		if successCode.HTTPCode != http.StatusOK {
			w.WriteHeader(successCode.HTTPCode)
		}
		return next(ctx, w, response)
	}
}
