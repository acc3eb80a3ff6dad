package cron

import (
	"context"
	"log/slog"
	"time"
)

// SessionEvictor removes sessions idle for longer than the configured TTL.
type SessionEvictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// NewSessionEvictionJob returns the job that sweeps idle sessions every interval.
func NewSessionEvictionJob(evictor SessionEvictor, interval time.Duration) Job {
	return Job{
		Name:     "evict_idle_sessions",
		Interval: interval,
		Timeout:  interval,
		Fn: func(ctx context.Context) error {
			n, err := evictor.EvictIdle(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				slog.Info("Cron: evicted idle sessions", "count", n)
			}
			return nil
		},
	}
}
