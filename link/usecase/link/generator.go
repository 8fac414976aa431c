package link

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/kit/code"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	utilKit "github.com/superj80820/link-shortener/kit/util"
)

const (
	codeAlphabet        = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxGenerateAttempts = 10
)

// generateCode draws random codes until one is free in both the used-code set
// and the store.
func (l *linkUseCase) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := utilKit.GetRandomString(codeAlphabet, l.config.CodeLength)
		if err != nil {
			return "", errors.Wrap(err, "generate random code failed")
		}
		if l.isReserved(candidate) {
			continue
		}
		taken, err := l.isCodeTaken(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check code failed")
		}
		if !taken {
			return candidate, nil
		}
		l.logger.Debug("generated code collided", loggerKit.String("code", candidate), loggerKit.Int("attempt", attempt+1))
	}
	return "", code.CreateErrorCode(http.StatusInternalServerError).AddCode(code.GenerateCodeFailed)
}

// isCodeTaken consults the used-code set first. A cache miss or error is
// confirmed against the store.
func (l *linkUseCase) isCodeTaken(ctx context.Context, candidate string) (bool, error) {
	exists, err := l.linkCacheRepo.CodeExists(ctx, candidate)
	if err != nil {
		l.logger.Warn("check code in cache failed", loggerKit.String("code", candidate), loggerKit.Error(err))
	} else if exists {
		return true, nil
	}
	exists, err = l.linkRepo.ExistsCode(ctx, candidate)
	if err != nil {
		return false, errors.Wrap(err, "check code in store failed")
	}
	return exists, nil
}
