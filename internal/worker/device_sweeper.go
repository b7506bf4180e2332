package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper evicts idle entries.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// StartDeviceSweeper evicts session roots idle for longer than idle every
// interval until ctx is done. The returned channel closes when it stops.
func StartDeviceSweeper(ctx context.Context, sweeper Sweeper, interval, idle time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 || idle <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sweeper.Sweep(idle); removed > 0 {
					logger.Info("device sweep", zap.Int("evicted", removed))
				}
			}
		}
	}()
	return done
}
