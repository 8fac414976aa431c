package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type linkCodeRequest struct {
	Code string
}

// DecodeLinkCodeRequest reads the {code} path variable. Codes are case
// insensitive.
func DecodeLinkCodeRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	shortCode, ok := mux.Vars(r)["code"]
	if !ok {
		return nil, errors.New("get code failed")
	}
	return linkCodeRequest{Code: strings.ToLower(shortCode)}, nil
}
