package background

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
)

// RunLinkMaintenance runs maintenance every interval until ctx is done. A
// failed round is logged and retried on the next tick.
func RunLinkMaintenance(ctx context.Context, linkUseCase domain.LinkUseCase, interval time.Duration, logger *loggerKit.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			result, err := linkUseCase.RunMaintenance(ctx)
			if err != nil {
				logger.Error("link maintenance failed", loggerKit.Error(err))
				continue
			}
			logger.Info("link maintenance done",
				loggerKit.Int("expired-codes", result.ExpiredCodes),
				loggerKit.Int("synced-codes", result.SyncedCodes),
				loggerKit.Int("deleted-links", result.DeletedLinks),
				loggerKit.Duration("latency", time.Since(start)),
			)
		}
	}
}

func RunClickCounter(ctx context.Context, clickUseCase domain.ClickUseCase) error {
	clickUseCase.ConsumeClicks(ctx)

	select {
	case <-clickUseCase.Done():
		if err := clickUseCase.Err(); err != nil {
			return errors.Wrap(err, "click counter get error")
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
