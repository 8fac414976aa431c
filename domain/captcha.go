package domain

import "context"

type CaptchaRepo interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}
