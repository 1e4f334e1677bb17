package transient

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunPurger calls PurgeExpired every interval until ctx is cancelled.
// A non-positive interval returns immediately.
func RunPurger(ctx context.Context, p Purger, every time.Duration, log *zap.Logger) {
	if every <= 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired()
			if err != nil {
				log.Warn("purge expired transients", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged expired transients", zap.Int64("count", n))
			}
		}
	}
}
