package app

import (
	"context"
	"log/slog"
	"time"
)

const maxBackoff = 30 * time.Second

// reloader is the part of the collection manager the poller drives.
type reloader interface {
	Reload(ctx context.Context) error
}

// StartPoller launches a background goroutine that reloads the collection
// at a fixed cadence, backing off while loads keep failing. It returns
// immediately. A non-positive interval disables polling.
func StartPoller(ctx context.Context, r reloader, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	go poll(ctx, r, interval, logger)
}

func poll(ctx context.Context, r reloader, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	failures := 0
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := r.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
		} else {
			failures = 0
		}

		next := calculateBackoff(failures, interval)
		if failures > 0 {
			logger.Debug("reload backing off",
				slog.Int("failures", failures),
				slog.Duration("next", next))
		}
		timer.Reset(next)
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
