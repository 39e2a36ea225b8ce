package cache

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically sweeps expired entries from a Cache.
type Janitor struct {
	cache    *Cache
	interval time.Duration
	log      *slog.Logger
}

// NewJanitor creates a janitor. A non-positive interval disables it.
func NewJanitor(c *Cache, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{cache: c, interval: interval, log: logger}
}

// Start runs the sweep loop until ctx is done.
func (j *Janitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.cache.Cleanup(); n > 0 {
				j.log.Debug("Swept expired cache entries", "removed", n)
			}
		}
	}
}
