package link

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	"github.com/superj80820/link-shortener/kit/code"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

type Config struct {
	BaseURL             string
	CodeLength          int
	MinCustomCodeLength int
	MaxCustomCodeLength int
	DefaultExpiryDays   int
	MaxExpiryDays       int
	MaxURLLength        int
	CacheTTL            time.Duration
	ReservedCodes       []string
	BlockedDomains      []string
	CaptchaEnabled      bool
	DeleteExpiredLinks  bool
}

func DefaultConfig() Config {
	return Config{
		BaseURL:             "http://localhost:8000",
		CodeLength:          7,
		MinCustomCodeLength: 3,
		MaxCustomCodeLength: 20,
		DefaultExpiryDays:   30,
		MaxExpiryDays:       365,
		MaxURLLength:        2048,
		CacheTTL:            24 * time.Hour,
	}
}

type linkUseCase struct {
	linkRepo      domain.LinkRepo
	linkCacheRepo domain.LinkCacheRepo
	captchaRepo   domain.CaptchaRepo
	logger        *loggerKit.Logger

	config         Config
	reservedCodes  map[string]struct{}
	blockedDomains []string
	now            func() time.Time
}

type Option func(*linkUseCase)

func SetClock(now func() time.Time) Option {
	return func(l *linkUseCase) {
		l.now = now
	}
}

// CreateLinkUseCase wires the link service. captchaRepo may be nil when
// captcha verification is disabled.
func CreateLinkUseCase(linkRepo domain.LinkRepo, linkCacheRepo domain.LinkCacheRepo, captchaRepo domain.CaptchaRepo, config Config, logger *loggerKit.Logger, options ...Option) domain.LinkUseCase {
	reservedCodes := make(map[string]struct{})
	for _, reservedCode := range append(append([]string{}, DefaultReservedCodes...), config.ReservedCodes...) {
		reservedCodes[NormalizeCode(reservedCode)] = struct{}{}
	}

	l := &linkUseCase{
		linkRepo:       linkRepo,
		linkCacheRepo:  linkCacheRepo,
		captchaRepo:    captchaRepo,
		logger:         logger,
		config:         config,
		reservedCodes:  reservedCodes,
		blockedDomains: normalizeDomains(append(append([]string{}, defaultBlockedDomains...), config.BlockedDomains...)),
		now:            time.Now,
	}
	for _, option := range options {
		option(l)
	}

	return l
}

func (l *linkUseCase) ShortURL(code string) string {
	return strings.TrimRight(l.config.BaseURL, "/") + "/" + code
}

func (l *linkUseCase) Create(ctx context.Context, params *domain.CreateLinkParams) (*domain.Link, error) {
	destination, err := l.validateDestination(params.URL)
	if err != nil {
		return nil, errors.Wrap(err, "validate url failed")
	}

	expiryDays := l.config.DefaultExpiryDays
	if params.ExpiresInDays != nil {
		expiryDays = *params.ExpiresInDays
	}
	if expiryDays < 1 || expiryDays > l.config.MaxExpiryDays {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidExpiry, l.config.MaxExpiryDays)
	}

	customCode := NormalizeCode(params.CustomCode)
	if customCode != "" {
		if err := l.validateCustomCode(customCode); err != nil {
			return nil, errors.Wrap(err, "validate custom code failed")
		}
	}

	if err := l.verifyCaptcha(ctx, params); err != nil {
		return nil, errors.Wrap(err, "verify captcha failed")
	}

	now := l.now().UTC()
	expiresAt := now.AddDate(0, 0, expiryDays)
	link := &domain.Link{
		Destination: destination,
		CreatorIP:   params.CreatorIP,
		APIKeyID:    params.APIKeyID,
		ExpiresAt:   &expiresAt,
		CreatedAt:   now,
	}

	if customCode != "" {
		taken, err := l.isCodeTaken(ctx, customCode)
		if err != nil {
			return nil, errors.Wrap(err, "check custom code failed")
		}
		if taken {
			return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.TakenCode)
		}
		link.Code = customCode
		if err := l.linkRepo.Create(ctx, link); errors.Is(err, domain.ErrDuplicate) {
			return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.TakenCode).AddErrorMetaData(err)
		} else if err != nil {
			return nil, errors.Wrap(err, "create link failed")
		}
	} else if err := l.createWithGeneratedCode(ctx, link); err != nil {
		return nil, errors.Wrap(err, "create link failed")
	}

	l.cacheCreated(ctx, link)

	return link, nil
}

// createWithGeneratedCode retries when a concurrent writer took the code
// between the availability check and the insert.
func (l *linkUseCase) createWithGeneratedCode(ctx context.Context, link *domain.Link) error {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		generatedCode, err := l.generateCode(ctx)
		if err != nil {
			return errors.Wrap(err, "generate code failed")
		}
		link.Code = generatedCode
		link.ID = 0
		if err := l.linkRepo.Create(ctx, link); errors.Is(err, domain.ErrDuplicate) {
			continue
		} else if err != nil {
			return errors.Wrap(err, "insert link failed")
		}
		return nil
	}
	return code.CreateErrorCode(http.StatusInternalServerError).AddCode(code.GenerateCodeFailed)
}

func (l *linkUseCase) cacheCreated(ctx context.Context, link *domain.Link) {
	if err := l.linkCacheRepo.AddCode(ctx, link.Code); err != nil {
		l.logger.Warn("add code to cache failed", loggerKit.String("code", link.Code), loggerKit.Error(err))
	}
	l.cacheDestination(ctx, link)
}

func (l *linkUseCase) cacheDestination(ctx context.Context, link *domain.Link) {
	ttl := l.config.CacheTTL
	if link.ExpiresAt != nil {
		if untilExpiry := link.ExpiresAt.Sub(l.now()); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	if err := l.linkCacheRepo.SetDestination(ctx, link.Code, link.Destination, ttl); err != nil {
		l.logger.Warn("cache destination failed", loggerKit.String("code", link.Code), loggerKit.Error(err))
	}
}

// verifyCaptcha is skipped for api key callers. Verifier outages let the
// request through.
func (l *linkUseCase) verifyCaptcha(ctx context.Context, params *domain.CreateLinkParams) error {
	if !l.config.CaptchaEnabled || l.captchaRepo == nil || params.APIKeyID != 0 {
		return nil
	}
	if params.CaptchaToken == "" {
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.CaptchaRequired)
	}
	ok, err := l.captchaRepo.Verify(ctx, params.CaptchaToken, params.CreatorIP)
	if err != nil {
		l.logger.Warn("captcha verifier unavailable, allow request", loggerKit.Error(err))
		return nil
	}
	if !ok {
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.CaptchaInvalid)
	}
	return nil
}

func (l *linkUseCase) Resolve(ctx context.Context, rawCode string) (string, error) {
	shortCode := NormalizeCode(rawCode)
	if shortCode == "" || l.isReserved(shortCode) {
		return "", code.CreateErrorCode(http.StatusNotFound).AddCode(code.LinkNotFound)
	}

	destination, exists, err := l.linkCacheRepo.GetDestination(ctx, shortCode)
	if err != nil {
		l.logger.Warn("get destination from cache failed", loggerKit.String("code", shortCode), loggerKit.Error(err))
	} else if exists {
		return destination, nil
	}

	link, err := l.getActiveLink(ctx, shortCode)
	if err != nil {
		return "", errors.Wrap(err, "get link failed")
	}

	l.cacheDestination(ctx, link)

	return link.Destination, nil
}

// getActiveLink maps a missing code to 404 and an expired one to 410.
func (l *linkUseCase) getActiveLink(ctx context.Context, shortCode string) (*domain.Link, error) {
	link, err := l.getLink(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link.IsExpired(l.now()) {
		return nil, code.CreateErrorCode(http.StatusGone).AddCode(code.LinkExpired).AddErrorMetaData(domain.ErrExpired)
	}
	return link, nil
}

func (l *linkUseCase) getLink(ctx context.Context, shortCode string) (*domain.Link, error) {
	link, err := l.linkRepo.GetByCode(ctx, shortCode)
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusNotFound).AddCode(code.LinkNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get link failed")
	}
	return link, nil
}

func (l *linkUseCase) CheckCode(ctx context.Context, rawCode string) (*domain.CodeAvailability, error) {
	shortCode := NormalizeCode(rawCode)
	availability := &domain.CodeAvailability{Code: shortCode}

	if err := l.validateCustomCode(shortCode); err != nil {
		switch code.ParseErrorCode(err).Code {
		case code.ReservedCode:
			availability.Reason = domain.CodeReserved
		default:
			availability.Reason = domain.CodeInvalid
		}
		return availability, nil
	}

	taken, err := l.isCodeTaken(ctx, shortCode)
	if err != nil {
		return nil, errors.Wrap(err, "check code failed")
	}
	if taken {
		availability.Reason = domain.CodeTaken
		return availability, nil
	}

	availability.Available = true
	return availability, nil
}

func (l *linkUseCase) GetStats(ctx context.Context, rawCode string) (*domain.LinkStats, error) {
	shortCode := NormalizeCode(rawCode)

	link, err := l.getLink(ctx, shortCode)
	if err != nil {
		return nil, errors.Wrap(err, "get link failed")
	}

	return &domain.LinkStats{
		Code:        link.Code,
		ShortURL:    l.ShortURL(link.Code),
		Destination: link.Destination,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    !link.IsExpired(l.now()),
	}, nil
}

func (l *linkUseCase) Preview(ctx context.Context, rawCode string) (*domain.LinkPreview, error) {
	shortCode := NormalizeCode(rawCode)

	link, err := l.getActiveLink(ctx, shortCode)
	if err != nil {
		return nil, errors.Wrap(err, "get link failed")
	}

	isSafe, warning := l.isSafeDestination(link.Destination)

	return &domain.LinkPreview{
		Code:        link.Code,
		Destination: link.Destination,
		IsSafe:      isSafe,
		Warning:     warning,
	}, nil
}

func (l *linkUseCase) Delete(ctx context.Context, rawCode string) error {
	shortCode := NormalizeCode(rawCode)

	if err := l.linkRepo.Delete(ctx, shortCode); errors.Is(err, domain.ErrNoData) {
		return code.CreateErrorCode(http.StatusNotFound).AddCode(code.LinkNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return errors.Wrap(err, "delete link failed")
	}

	if err := l.linkCacheRepo.DeleteDestination(ctx, shortCode); err != nil {
		l.logger.Warn("delete destination from cache failed", loggerKit.String("code", shortCode), loggerKit.Error(err))
	}
	if err := l.linkCacheRepo.RemoveCodes(ctx, shortCode); err != nil {
		l.logger.Warn("remove code from cache failed", loggerKit.String("code", shortCode), loggerKit.Error(err))
	}

	return nil
}

// SyncCodes rebuilds the used-code set from every code still stored.
func (l *linkUseCase) SyncCodes(ctx context.Context) (int, error) {
	codes, err := l.linkRepo.GetAllCodes(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "get all codes failed")
	}
	if err := l.linkCacheRepo.ReplaceCodes(ctx, codes); err != nil {
		return 0, errors.Wrap(err, "replace codes failed")
	}
	return len(codes), nil
}

// RunMaintenance evicts expired destinations from the cache, optionally
// deletes expired rows, then resyncs the used-code set.
func (l *linkUseCase) RunMaintenance(ctx context.Context) (*domain.MaintenanceResult, error) {
	now := l.now()
	result := new(domain.MaintenanceResult)

	expiredCodes, err := l.linkRepo.GetExpiredCodes(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "get expired codes failed")
	}
	result.ExpiredCodes = len(expiredCodes)

	if err := l.linkCacheRepo.DeleteDestination(ctx, expiredCodes...); err != nil {
		return nil, errors.Wrap(err, "delete expired destinations failed")
	}

	if l.config.DeleteExpiredLinks {
		deleted, err := l.linkRepo.DeleteExpired(ctx, now)
		if err != nil {
			return nil, errors.Wrap(err, "delete expired links failed")
		}
		result.DeletedLinks = int(deleted)
	}

	synced, err := l.SyncCodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sync codes failed")
	}
	result.SyncedCodes = synced

	return result, nil
}
