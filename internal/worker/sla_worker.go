package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/service"
)

// StartSLAWorker runs the SLA breach scan on a fixed interval until the
// context is cancelled.
func StartSLAWorker(ctx context.Context, slaService *service.SLAService, interval time.Duration, logger *zap.Logger) {
	if slaService == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if _, err := slaService.ScanOnce(ctx, now); err != nil {
					logger.Error("sla scan failed", zap.Error(err))
				}
			}
		}
	}()
}
