package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type tickJob struct {
	runs    atomic.Int32
	err     error
	retries []time.Duration
}

func (j *tickJob) Name() string                    { return "tick" }
func (j *tickJob) NextRun(now time.Time) time.Time { return now.Add(5 * time.Millisecond) }
func (j *tickJob) Retries() []time.Duration        { return j.retries }
func (j *tickJob) Run(context.Context) error       { j.runs.Add(1); return j.err }

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) SendAlert(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
	return nil
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d + time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	job := &tickJob{}
	s := NewScheduler(discard(), nil)
	s.Register(job)

	runFor(t, s, 100*time.Millisecond)
	if job.runs.Load() < 2 {
		t.Errorf("runs = %d, want several", job.runs.Load())
	}
}

func TestScheduler_AlertsAfterRetries(t *testing.T) {
	job := &tickJob{err: errors.New("db down"), retries: []time.Duration{time.Millisecond}}
	alerter := &recordingAlerter{}
	s := NewScheduler(discard(), alerter)
	s.Register(job)

	runFor(t, s, 60*time.Millisecond)
	if alerter.count() == 0 {
		t.Fatal("no alert after exhausted retries")
	}
	if job.runs.Load() < 2 {
		t.Errorf("runs = %d, want first attempt plus retry", job.runs.Load())
	}
}

func TestScheduler_NoJobs(t *testing.T) {
	if err := NewScheduler(discard(), nil).Run(context.Background()); err != nil {
		t.Errorf("Run with no jobs = %v", err)
	}
}

type blockingSender struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *blockingSender) SendReminders(ctx context.Context, _ time.Time) (bot.ReminderStats, error) {
	s.calls.Add(1)
	<-s.release
	return bot.ReminderStats{First: 1}, nil
}

func TestReminders_NoOverlap(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	job := NewReminders(sender, time.Minute, discard())

	done := make(chan error, 1)
	go func() { done <- job.Run(context.Background()) }()

	// ждём, пока первый проход займёт флаг
	deadline := time.After(time.Second)
	for sender.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first pass did not start")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("overlapping Run = %v", err)
	}
	if sender.calls.Load() != 1 {
		t.Errorf("calls = %d, want overlapping pass skipped", sender.calls.Load())
	}

	close(sender.release)
	if err := <-done; err != nil {
		t.Fatalf("first Run = %v", err)
	}
	if err := job.Run(context.Background()); err != nil || sender.calls.Load() != 2 {
		t.Errorf("after release: err=%v calls=%d, want next pass to run", err, sender.calls.Load())
	}
}

func TestAutomatedActions_NextRun(t *testing.T) {
	job := NewAutomatedActions(nil, 12, discard())
	msk := job.location

	before := time.Date(2026, 6, 1, 9, 0, 0, 0, msk)
	if got := job.NextRun(before); !got.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, msk)) {
		t.Errorf("NextRun(09:00) = %v", got)
	}
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, msk)
	if got := job.NextRun(at); !got.Equal(time.Date(2026, 6, 2, 12, 0, 0, 0, msk)) {
		t.Errorf("NextRun(12:00) = %v, want next day", got)
	}
}

type countingRunner struct{ calls int }

func (r *countingRunner) AutomatedActions(context.Context) *domain.AutomatedActionsResult {
	r.calls++
	return &domain.AutomatedActionsResult{WelcomeMessages: 2}
}

func TestAutomatedActions_Run(t *testing.T) {
	runner := &countingRunner{}
	job := NewAutomatedActions(runner, 10, discard())
	if err := job.Run(context.Background()); err != nil || runner.calls != 1 {
		t.Errorf("Run = %v, calls = %d", err, runner.calls)
	}
	if job.Retries() != nil {
		t.Error("automated actions must not be retried")
	}
}

type fakeSweeper struct{ swept int }

func (f *fakeSweeper) Sweep() int { f.swept++; return 3 }

func TestCacheSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := NewCacheSweep(sweeper, 0, discard())
	if job.interval != 5*time.Minute {
		t.Errorf("default interval = %v", job.interval)
	}
	if err := job.Run(context.Background()); err != nil || sweeper.swept != 1 {
		t.Errorf("Run = %v, swept = %d", err, sweeper.swept)
	}
}
