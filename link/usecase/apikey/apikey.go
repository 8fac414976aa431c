package apikey

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	"github.com/superj80820/link-shortener/kit/code"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	utilKit "github.com/superj80820/link-shortener/kit/util"
)

const (
	keyRandomBytes = 32
	keyLength      = len(domain.API_KEY_PREFIX) + 43
)

type apiKeyUseCase struct {
	apiKeyRepo       domain.APIKeyRepo
	defaultRateLimit int
	logger           *loggerKit.Logger
}

func CreateAPIKeyUseCase(apiKeyRepo domain.APIKeyRepo, defaultRateLimit int, logger *loggerKit.Logger) domain.APIKeyUseCase {
	return &apiKeyUseCase{
		apiKeyRepo:       apiKeyRepo,
		defaultRateLimit: defaultRateLimit,
		logger:           logger,
	}
}

// Generate returns the plain key once. Only its hash is stored.
func (a *apiKeyUseCase) Generate(ctx context.Context, name string, rateLimit int) (string, *domain.APIKey, error) {
	if rateLimit <= 0 {
		rateLimit = a.defaultRateLimit
	}

	token, err := utilKit.GetURLSafeToken(keyRandomBytes)
	if err != nil {
		return "", nil, errors.Wrap(err, "generate token failed")
	}
	plainKey := domain.API_KEY_PREFIX + token

	apiKey := &domain.APIKey{
		KeyHash:   utilKit.GetSHA256(plainKey),
		Name:      strings.TrimSpace(name),
		RateLimit: rateLimit,
		IsActive:  true,
	}
	if err := a.apiKeyRepo.Create(ctx, apiKey); err != nil {
		return "", nil, errors.Wrap(err, "create api key failed")
	}

	return plainKey, apiKey, nil
}

func (a *apiKeyUseCase) Validate(ctx context.Context, plainKey string) (*domain.APIKey, error) {
	if len(plainKey) != keyLength || !strings.HasPrefix(plainKey, domain.API_KEY_PREFIX) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.APIKeyInvalid)
	}

	apiKey, err := a.apiKeyRepo.GetByHash(ctx, utilKit.GetSHA256(plainKey))
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.APIKeyInvalid).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get api key failed")
	}
	if !apiKey.IsActive {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.APIKeyInvalid)
	}

	now := time.Now()
	if err := a.apiKeyRepo.UpdateLastUsed(ctx, apiKey.ID, now); err != nil {
		a.logger.Warn("update api key last used failed", loggerKit.Int64("api-key-id", apiKey.ID), loggerKit.Error(err))
	} else {
		apiKey.LastUsedAt = &now
	}

	return apiKey, nil
}

func (a *apiKeyUseCase) List(ctx context.Context) ([]*domain.APIKey, error) {
	apiKeys, err := a.apiKeyRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list api keys failed")
	}
	return apiKeys, nil
}

func (a *apiKeyUseCase) Deactivate(ctx context.Context, id int64) error {
	if err := a.apiKeyRepo.Deactivate(ctx, id); errors.Is(err, domain.ErrNoData) {
		return code.CreateErrorCode(http.StatusNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return errors.Wrap(err, "deactivate api key failed")
	}
	return nil
}
