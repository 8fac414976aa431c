package code

import (
	"encoding/json"
	"fmt"
	httpPKG "net/http"

	"github.com/pkg/errors"
)

type errorCode struct {
	HTTPCode    int            `json:"http_code"`
	Code        int            `json:"code"`
	Message     string         `json:"message"`
	OriginError error          `json:"-"`
	CallStack   string         `json:"-"`
	Header      httpPKG.Header `json:"-"`
}

func (e errorCode) Error() string {
	errorStr, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	return string(errorStr)
}

func (e *errorCode) AddErrorMetaData(err error) *errorCode {
	e.OriginError = err
	e.CallStack = fmt.Sprintf("%+v", err)
	return e
}

func (e *errorCode) AddCode(code int, args ...any) *errorCode {
	if httpErrorCodes, ok := errorCodes[e.HTTPCode]; ok {
		if errorCodes, ok := httpErrorCodes[code]; ok {
			e.Code = code
			e.Message = fmt.Sprintf(errorCodes, args...)
		}
	}
	return e
}

// AddHeader attaches a response header written by the error encoder.
func (e *errorCode) AddHeader(key, value string) *errorCode {
	if e.Header == nil {
		e.Header = make(httpPKG.Header)
	}
	e.Header.Set(key, value)
	return e
}

const (
	Default = iota
	RateLimit
	InvalidBody
	Expired
	InvalidURL
	BlockedURL
	InvalidCode
	ReservedCode
	TakenCode
	CodeLength
	InvalidExpiry
	LinkNotFound
	LinkExpired
	APIKeyInvalid
	CaptchaRequired
	CaptchaInvalid
	GenerateCodeFailed
)

var errorCodes = map[int]map[int]string{
	httpPKG.StatusTooManyRequests: {
		Default:   "too many requests",
		RateLimit: "rate limit error. expiry: %d",
	},
	httpPKG.StatusNotFound: {
		Default:      "not found",
		LinkNotFound: "short link not found",
	},
	httpPKG.StatusGone: {
		Default:     "gone",
		LinkExpired: "this link has expired",
	},
	httpPKG.StatusInternalServerError: {
		Default:            "internal error",
		GenerateCodeFailed: "failed to generate unique code. please try again",
	},
	httpPKG.StatusBadRequest: {
		Default:       "bad request",
		InvalidBody:   "invalid body",
		InvalidURL:    "invalid url: %s",
		BlockedURL:    "url is not allowed: %s",
		InvalidCode:   "code can only contain lowercase letters, numbers and hyphens",
		ReservedCode:  "this short code is reserved",
		TakenCode:     "this short code is already taken",
		CodeLength:    "code must be between %d and %d characters",
		InvalidExpiry: "expires_in_days must be between 1 and %d",
	},
	httpPKG.StatusUnauthorized: {
		Default:       "unauthorized",
		Expired:       "expired",
		APIKeyInvalid: "invalid api key",
	},
	httpPKG.StatusForbidden: {
		Default:         "forbidden",
		CaptchaRequired: "captcha verification required",
		CaptchaInvalid:  "captcha verification failed",
	},
}

type errorCodeOption func(*errorCode)

func CreateErrorCode(code int, options ...errorCodeOption) *errorCode {
	resCode := httpPKG.StatusInternalServerError
	resMessage := errorCodes[httpPKG.StatusInternalServerError][Default]
	if codes, ok := errorCodes[code]; ok {
		resCode = code

		if errorCodes, ok := codes[Default]; ok {
			resMessage = errorCodes
		}
	}

	errorCode := errorCode{
		HTTPCode: resCode,
		Code:     Default,
		Message:  resMessage,
	}

	for _, option := range options {
		option(&errorCode)
	}

	return &errorCode
}

func ParseErrorCode(err error) *errorCode {
	causeErr := errors.Cause(err)
	switch errorCode := causeErr.(type) {
	case *errorCode:
		return errorCode
	}

	errorCode := CreateErrorCode(httpPKG.StatusInternalServerError).AddErrorMetaData(err)

	return errorCode
}

func IsHTTPCode(err error, httpCode int) bool {
	if err == nil {
		return false
	}
	errorCode, ok := errors.Cause(err).(*errorCode)
	return ok && errorCode.HTTPCode == httpCode
}
