package jobs

import (
	"context"
	"time"
)

// Job периодическая задача для планировщика
type Job interface {
	Name() string
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) error
}

// Retrier джоба со своей лестницей повторов; пустой список - без повторов,
// следующая попытка будет в штатное время
type Retrier interface {
	Retries() []time.Duration
}
