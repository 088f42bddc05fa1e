package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot"
)

const remindersName = "diagnostics-reminders"

type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (bot.ReminderStats, error)
}

// Reminders опрос пользователей, не начавших диагностику, с фиксированным интервалом.
// Новый проход не начинается, пока не закончился предыдущий
type Reminders struct {
	sender   ReminderSender
	interval time.Duration
	running  atomic.Bool
	log      *slog.Logger
	now      func() time.Time
}

func NewReminders(sender ReminderSender, interval time.Duration, log *slog.Logger) *Reminders {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reminders{
		sender:   sender,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

func (j *Reminders) Name() string {
	return remindersName
}

func (j *Reminders) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Retries пропущенный проход повторится на следующем тике
func (j *Reminders) Retries() []time.Duration {
	return nil
}

func (j *Reminders) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn("previous reminders pass still running, skipping")
		return nil
	}
	defer j.running.Store(false)

	stats, err := j.sender.SendReminders(ctx, j.now())
	if err != nil {
		return err
	}
	if stats.First+stats.Second+stats.Failed > 0 {
		j.log.Info("reminders pass finished",
			"first", stats.First,
			"second", stats.Second,
			"failed", stats.Failed)
	}
	return nil
}
