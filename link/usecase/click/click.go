package click

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

const (
	maxRefererLength = 500
	maxCountryLength = 2
	produceTimeout   = 100 * time.Millisecond
)

type clickUseCase struct {
	linkRepo  domain.LinkRepo
	clickRepo domain.ClickRepo
	logger    *loggerKit.Logger
}

func CreateClickUseCase(linkRepo domain.LinkRepo, clickRepo domain.ClickRepo, logger *loggerKit.Logger) domain.ClickUseCase {
	return &clickUseCase{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		logger:    logger,
	}
}

// Record publishes the click without failing the caller. A full topic drops
// the event after produceTimeout.
func (c *clickUseCase) Record(ctx context.Context, event *domain.ClickEvent) {
	event.Referer = sanitizeReferer(event.Referer)
	event.Country = strings.ToUpper(strings.TrimSpace(event.Country))
	if len(event.Country) > maxCountryLength {
		event.Country = ""
	}
	if event.ClickedAt.IsZero() {
		event.ClickedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), produceTimeout)
	defer cancel()

	if err := c.clickRepo.Produce(ctx, event); err != nil {
		c.logger.Warn("record click failed", loggerKit.String("code", event.Code), loggerKit.Error(err))
	}
}

func (c *clickUseCase) ConsumeClicks(ctx context.Context) {
	c.clickRepo.ConsumeBatch(func(events []*domain.ClickEvent) error {
		counts := make(map[string]int64)
		for _, event := range events {
			counts[event.Code]++
		}
		if err := c.linkRepo.IncrClickCounts(ctx, counts); err != nil {
			return err
		}
		c.logger.Debug("click counts flushed", loggerKit.Int("events", len(events)), loggerKit.Int("codes", len(counts)))
		return nil
	}, func(err error) {
		c.logger.Error("consume clicks failed", loggerKit.Error(err))
	})
}

func (c *clickUseCase) Done() <-chan struct{} {
	return c.clickRepo.Done()
}

func (c *clickUseCase) Err() error {
	return c.clickRepo.Err()
}

// sanitizeReferer keeps scheme, host and path so query strings never reach
// the store.
func sanitizeReferer(rawReferer string) string {
	if rawReferer == "" {
		return ""
	}
	parsedURL, err := url.Parse(rawReferer)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return ""
	}
	referer := parsedURL.Scheme + "://" + parsedURL.Host + parsedURL.EscapedPath()
	if len(referer) > maxRefererLength {
		referer = referer[:maxRefererLength]
	}
	return referer
}
