package jobs

import (
	"context"
	"log/slog"
	"time"
)

const cacheSweepName = "cache-sweep"

type Sweeper interface {
	Sweep() int
}

// CacheSweep удаляет протухшие ключи in-memory кэша
type CacheSweep struct {
	cache    Sweeper
	interval time.Duration
	log      *slog.Logger
}

func NewCacheSweep(cache Sweeper, interval time.Duration, log *slog.Logger) *CacheSweep {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheSweep{cache: cache, interval: interval, log: log}
}

func (j *CacheSweep) Name() string {
	return cacheSweepName
}

func (j *CacheSweep) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

func (j *CacheSweep) Retries() []time.Duration {
	return nil
}

func (j *CacheSweep) Run(context.Context) error {
	if removed := j.cache.Sweep(); removed > 0 {
		j.log.Debug("expired cache entries removed", "count", removed)
	}
	return nil
}
