package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
)

const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type verifyRequest struct {
	secret   string
	token    string
	remoteIP string
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type turnstileRepo struct {
	secretKey string
	verify    endpoint.Endpoint
}

type turnstileConfig struct {
	verifyURL string
	timeout   time.Duration
}

type Option func(*turnstileConfig)

func SetVerifyURL(verifyURL string) Option {
	return func(c *turnstileConfig) {
		c.verifyURL = verifyURL
	}
}

func SetTimeout(timeout time.Duration) Option {
	return func(c *turnstileConfig) {
		c.timeout = timeout
	}
}

func CreateTurnstileRepo(secretKey string, options ...Option) (domain.CaptchaRepo, error) {
	config := &turnstileConfig{
		verifyURL: DefaultVerifyURL,
		timeout:   10 * time.Second,
	}
	for _, option := range options {
		option(config)
	}

	target, err := url.Parse(config.verifyURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse verify url failed")
	}

	client := httptransport.NewClient(
		http.MethodPost,
		target,
		encodeVerifyRequest,
		decodeVerifyResponse,
		httptransport.SetClient(&http.Client{Timeout: config.timeout}),
	)

	return &turnstileRepo{
		secretKey: secretKey,
		verify:    client.Endpoint(),
	}, nil
}

func (t *turnstileRepo) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	res, err := t.verify(ctx, verifyRequest{
		secret:   t.secretKey,
		token:    token,
		remoteIP: remoteIP,
	})
	if err != nil {
		return false, errors.Wrap(err, "verify turnstile failed")
	}
	return res.(verifyResponse).Success, nil
}

func encodeVerifyRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(verifyRequest)

	form := url.Values{}
	form.Set("secret", req.secret)
	form.Set("response", req.token)
	if req.remoteIP != "" {
		form.Set("remoteip", req.remoteIP)
	}
	body := form.Encode()

	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Body = io.NopCloser(strings.NewReader(body))
	r.ContentLength = int64(len(body))

	return nil
}

func decodeVerifyResponse(ctx context.Context, r *http.Response) (interface{}, error) {
	if r.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("unexpected status code %d", r.StatusCode))
	}
	var res verifyResponse
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		return nil, errors.Wrap(err, "decode verify response failed")
	}
	return res, nil
}
