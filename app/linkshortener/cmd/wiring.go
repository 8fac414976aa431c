package cmd

import (
	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	mqKit "github.com/superj80820/link-shortener/kit/mq"
	apiKeyORMRepo "github.com/superj80820/link-shortener/link/repository/apikey/orm"
	"github.com/superj80820/link-shortener/link/repository/captcha/turnstile"
	clickMQRepo "github.com/superj80820/link-shortener/link/repository/click/mq"
	linkORMRepo "github.com/superj80820/link-shortener/link/repository/link/orm"
	linkRedisRepo "github.com/superj80820/link-shortener/link/repository/link/redis"
	"github.com/superj80820/link-shortener/link/usecase/apikey"
	linkUseCaseLib "github.com/superj80820/link-shortener/link/usecase/link"
)

type repos struct {
	link      domain.LinkRepo
	linkCache domain.LinkCacheRepo
	apiKey    domain.APIKeyRepo
	captcha   domain.CaptchaRepo
	click     domain.ClickRepo
}

// createRepos leaves the cache and click repos nil when inf has no cache or
// clickMQTopic is nil.
func createRepos(inf *infra, cfg config, clickMQTopic mqKit.MQTopic) (*repos, error) {
	r := &repos{
		link:   linkORMRepo.CreateLinkRepo(inf.db),
		apiKey: apiKeyORMRepo.CreateAPIKeyRepo(inf.db),
	}
	if inf.cache != nil {
		r.linkCache = linkRedisRepo.CreateLinkCacheRepo(inf.cache)
	}
	if clickMQTopic != nil {
		r.click = clickMQRepo.CreateClickRepo(clickMQTopic)
	}

	if cfg.turnstileEnabled {
		if cfg.turnstileSecretKey == "" {
			inf.logger.Warn("turnstile enabled without secret key, captcha verification skipped")
		} else {
			captchaRepo, err := turnstile.CreateTurnstileRepo(cfg.turnstileSecretKey)
			if err != nil {
				return nil, errors.Wrap(err, "create turnstile repo failed")
			}
			r.captcha = captchaRepo
		}
	}

	return r, nil
}

func createLinkUseCase(r *repos, cfg config, logger *loggerKit.Logger) domain.LinkUseCase {
	linkConfig := cfg.link
	linkConfig.CaptchaEnabled = r.captcha != nil
	return linkUseCaseLib.CreateLinkUseCase(r.link, r.linkCache, r.captcha, linkConfig, logger)
}

func createAPIKeyUseCase(r *repos, cfg config, logger *loggerKit.Logger) domain.APIKeyUseCase {
	return apikey.CreateAPIKeyUseCase(r.apiKey, cfg.apiKeyRateLimit, logger)
}
