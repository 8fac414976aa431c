package code

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	errorCodeNotFound := CreateErrorCode(http.StatusNotFound)
	assert.Equal(t, errorCodeNotFound, ParseErrorCode(errorCodeNotFound))
	assert.Equal(t, errorCodeNotFound, ParseErrorCode(errors.Wrap(errorCodeNotFound, "get link failed")))

	for _, testCase := range []struct {
		message          string
		errString        string
		isExistCallStack bool
		errorCode        *errorCode
	}{
		{
			message:          "bad request",
			errString:        `{"http_code":400,"code":0,"message":"bad request"}`,
			isExistCallStack: false,
			errorCode:        CreateErrorCode(http.StatusBadRequest),
		},
		{
			message:          "rate limit error. expiry: 3",
			errString:        `{"http_code":429,"code":1,"message":"rate limit error. expiry: 3"}`,
			isExistCallStack: false,
			errorCode:        CreateErrorCode(http.StatusTooManyRequests).AddCode(RateLimit, 3),
		},
		{
			message:          "internal error",
			errString:        `{"http_code":500,"code":0,"message":"internal error"}`,
			isExistCallStack: true,
			errorCode:        ParseErrorCode(errors.New("unknown error")),
		},
		{
			message:          "this link has expired",
			errString:        `{"http_code":410,"code":12,"message":"this link has expired"}`,
			isExistCallStack: false,
			errorCode:        CreateErrorCode(http.StatusGone).AddCode(LinkExpired),
		},
		{
			message:          "code must be between 3 and 20 characters",
			errString:        `{"http_code":400,"code":9,"message":"code must be between 3 and 20 characters"}`,
			isExistCallStack: false,
			errorCode:        CreateErrorCode(http.StatusBadRequest).AddCode(CodeLength, 3, 20),
		},
		{
			message:          "not found",
			errString:        `{"http_code":404,"code":0,"message":"not found"}`,
			isExistCallStack: false,
			errorCode:        CreateErrorCode(http.StatusNotFound).AddCode(TakenCode),
		},
	} {
		assert.Equal(t, testCase.message, testCase.errorCode.Message)
		assert.Equal(t, testCase.errString, testCase.errorCode.Error())
		assert.Equal(t, testCase.isExistCallStack, len(testCase.errorCode.CallStack) != 0)
	}
}

func TestErrorCodeHeader(t *testing.T) {
	errorCode := CreateErrorCode(http.StatusTooManyRequests).AddCode(RateLimit, 10).AddHeader("X-RateLimit-Remaining", "0")
	assert.Equal(t, "0", errorCode.Header.Get("X-RateLimit-Remaining"))
	assert.NotContains(t, errorCode.Error(), "X-RateLimit-Remaining")

	assert.True(t, IsHTTPCode(errors.Wrap(errorCode, "pass failed"), http.StatusTooManyRequests))
	assert.False(t, IsHTTPCode(errors.New("unknown"), http.StatusTooManyRequests))
	assert.False(t, IsHTTPCode(nil, http.StatusTooManyRequests))
}

func TestParseResponseSuccessCode(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, ParseResponseSuccessCode(nil).HTTPCode)
	assert.Equal(t, http.StatusOK, ParseResponseSuccessCode(struct{}{}).HTTPCode)
	assert.Equal(t, http.StatusFound, ParseResponseSuccessCode(SuccessCode{HTTPCode: http.StatusFound}).HTTPCode)

	embedded := struct {
		SuccessCode
		Location string
	}{SuccessCode: CreateSuccessCode(http.StatusMovedPermanently)}
	assert.Equal(t, http.StatusMovedPermanently, ParseResponseSuccessCode(embedded).HTTPCode)
}
