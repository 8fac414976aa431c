package code

import httpPKG "net/http"

type SuccessCode struct {
	HTTPCode int
}

func CreateSuccessCode(httpCode int) SuccessCode {
	return SuccessCode{HTTPCode: httpCode}
}

func (s SuccessCode) GetSuccessCode() SuccessCode {
	return s
}

type successCoder interface {
	GetSuccessCode() SuccessCode
}

// ParseResponseSuccessCode also reads responses that embed SuccessCode.
func ParseResponseSuccessCode(res interface{}) *SuccessCode {
	switch successCode := res.(type) {
	case nil:
		return &SuccessCode{HTTPCode: httpPKG.StatusNoContent}
	case successCoder:
		parsed := successCode.GetSuccessCode()
		return &parsed
	}
	return &SuccessCode{HTTPCode: httpPKG.StatusOK}
}
