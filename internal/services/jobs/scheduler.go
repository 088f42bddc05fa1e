package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/metrics"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/jobs"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

// лестница повторов по умолчанию: now + 1m + 10m + 30m
var defaultRetries = []time.Duration{
	1 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
}

// Scheduler управляет запуском периодических джоб.
// Каждая джоба крутится в своей горутине, запуски одной джобы не пересекаются
type Scheduler struct {
	jobs           []jobs.Job
	alerterService service.IAlerterService
	log            *slog.Logger
	now            func() time.Time
}

func NewScheduler(log *slog.Logger, alerterService service.IAlerterService) *Scheduler {
	return &Scheduler{
		jobs:           make([]jobs.Job, 0),
		alerterService: alerterService,
		log:            log,
		now:            time.Now,
	}
}

func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job_name", job.Name(), "total_jobs", len(s.jobs))
}

// Run блокирует до отмены ctx и завершения всех джоб
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		s.log.Warn("no jobs registered, scheduler not started")
		return nil
	}

	s.log.Info("starting job scheduler", "jobs_count", len(s.jobs))

	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runJob(ctx, job)
		}()
	}
	wg.Wait()

	s.log.Info("job scheduler stopped")
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job jobs.Job) {
	name := job.Name()
	for {
		now := s.now()
		timer := time.NewTimer(job.NextRun(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("job stopped by context", "job_name", name)
			return
		case <-timer.C:
			started := s.now()
			attempts, err := s.executeWithRetry(ctx, job)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Error("job failed after all retries", "job_name", name, "attempts", len(attempts), "error", err)
				s.sendAlert(ctx, name, attempts)
				continue
			}
			s.log.Debug("job executed", "job_name", name, "duration", s.now().Sub(started))
		}
	}
}

// jobAttemptError ошибка конкретной попытки выполнения джобы
type jobAttemptError struct {
	attempt int
	err     error
}

func retriesFor(job jobs.Job) []time.Duration {
	if r, ok := job.(jobs.Retrier); ok {
		return r.Retries()
	}
	return defaultRetries
}

// executeWithRetry возвращает ошибки всех попыток, если ни одна не удалась
func (s *Scheduler) executeWithRetry(ctx context.Context, job jobs.Job) ([]jobAttemptError, error) {
	retries := retriesFor(job)
	var attempts []jobAttemptError

	for attempt := 1; ; attempt++ {
		err := job.Run(ctx)
		if err == nil {
			metrics.RecordJobRun(job.Name(), "success")
			return nil, nil
		}
		attempts = append(attempts, jobAttemptError{attempt: attempt, err: err})

		if attempt > len(retries) {
			metrics.RecordJobRun(job.Name(), "failure")
			return attempts, fmt.Errorf("all attempts failed (total attempts: %d): %w", attempt, err)
		}
		metrics.RecordJobRun(job.Name(), "retry")
		s.log.Warn("job execution failed, will retry",
			"job_name", job.Name(),
			"attempt", attempt,
			"retries_remaining", len(retries)-attempt+1,
			"error", err)

		timer := time.NewTimer(retries[attempt-1])
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) sendAlert(ctx context.Context, jobName string, attempts []jobAttemptError) {
	if s.alerterService == nil {
		return
	}

	lines := make([]string, 0, len(attempts))
	for _, a := range attempts {
		lines = append(lines, fmt.Sprintf("Попытка %d: %s", a.attempt, a.err))
	}

	var message strings.Builder
	message.WriteString("Джоба " + jobName + " не выполнилась, повторы исчерпаны\n\n")
	message.WriteString(strings.Join(lines, "\n"))

	if err := s.alerterService.SendAlert(ctx, message.String()); err != nil {
		s.log.Warn("failed to send job failure alert", "job_name", jobName, "error", err)
	}
}
