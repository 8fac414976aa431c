package http

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/link-shortener/domain"
	"github.com/superj80820/link-shortener/kit/code"
	httpKit "github.com/superj80820/link-shortener/kit/http"
	httpTransportKit "github.com/superj80820/link-shortener/kit/http/transport"
)

var (
	DecodeLinkShortenRequest  = httpTransportKit.DecodeJsonRequest[LinkShortenRequest]
	EncodeLinkShortenResponse = httpTransportKit.EncodeJsonResponse
)

// LinkShortenRequest also accepts the older custom_suffix and expires_at
// fields.
type LinkShortenRequest struct {
	URL                 string `json:"url"`
	CustomCode          string `json:"custom_code"`
	CustomSuffix        string `json:"custom_suffix"`
	ExpiresInDays       *int   `json:"expires_in_days"`
	ExpiresAt           string `json:"expires_at"`
	CFTurnstileResponse string `json:"cf_turnstile_response"`
}

type LinkShortenResponse struct {
	ShortURL    string     `json:"short_url"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func MakeLinkShortenEndpoint(svc domain.LinkUseCase, maxExpiryDays int) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(LinkShortenRequest)

		customCode := req.CustomCode
		if strings.TrimSpace(customCode) == "" {
			customCode = req.CustomSuffix
		}
		expiresInDays := req.ExpiresInDays
		if expiresInDays == nil && req.ExpiresAt != "" {
			days, err := expiresAtToDays(req.ExpiresAt, time.Now(), maxExpiryDays)
			if err != nil {
				return nil, err
			}
			expiresInDays = &days
		}
		captchaToken := req.CFTurnstileResponse
		if captchaToken == "" {
			captchaToken = httpKit.GetCaptchaToken(ctx)
		}

		link, err := svc.Create(ctx, &domain.CreateLinkParams{
			URL:           req.URL,
			CustomCode:    customCode,
			ExpiresInDays: expiresInDays,
			CreatorIP:     httpKit.GetIP(ctx),
			APIKeyID:      httpKit.GetAPIKeyID(ctx),
			CaptchaToken:  captchaToken,
		})
		if err != nil {
			return nil, err
		}

		return &LinkShortenResponse{
			ShortURL:    svc.ShortURL(link.Code),
			ShortCode:   link.Code,
			OriginalURL: link.Destination,
			ExpiresAt:   link.ExpiresAt,
			CreatedAt:   link.CreatedAt,
		}, nil
	}
}

// expiresAtToDays converts an absolute expiry into whole days from now,
// clamped to 1..maxExpiryDays.
func expiresAtToDays(expiresAt string, now time.Time, maxExpiryDays int) (int, error) {
	var (
		parsed time.Time
		err    error
	)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if parsed, err = time.Parse(layout, expiresAt); err == nil {
			break
		}
	}
	if err != nil {
		return 0, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidExpiry, maxExpiryDays).AddErrorMetaData(err)
	}

	days := int(math.Ceil(parsed.Sub(now).Hours() / 24))
	if days < 1 {
		days = 1
	}
	if days > maxExpiryDays {
		days = maxExpiryDays
	}
	return days, nil
}
