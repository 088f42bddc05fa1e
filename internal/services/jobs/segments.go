package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const (
	segmentsRefreshName  = "segments-refresh"
	automatedActionsName = "automated-actions"
)

type SegmentRefresher interface {
	Refresh(ctx context.Context) (*domain.SegmentRefresh, error)
}

// SegmentsRefresh пересчёт сегментов активных пользователей с интервалом
type SegmentsRefresh struct {
	segmenter SegmentRefresher
	interval  time.Duration
	log       *slog.Logger
}

func NewSegmentsRefresh(segmenter SegmentRefresher, interval time.Duration, log *slog.Logger) *SegmentsRefresh {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SegmentsRefresh{
		segmenter: segmenter,
		interval:  interval,
		log:       log,
	}
}

func (j *SegmentsRefresh) Name() string {
	return segmentsRefreshName
}

func (j *SegmentsRefresh) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

func (j *SegmentsRefresh) Run(ctx context.Context) error {
	result, err := j.segmenter.Refresh(ctx)
	if err != nil {
		return err
	}
	j.log.Info("segments refresh finished", "total_processed", result.TotalProcessed)
	return nil
}

type ActionRunner interface {
	AutomatedActions(ctx context.Context) *domain.AutomatedActionsResult
}

// AutomatedActions рассылка по сегментам раз в сутки в заданный час по Мск
type AutomatedActions struct {
	runner   ActionRunner
	hour     int
	location *time.Location
	log      *slog.Logger
}

func NewAutomatedActions(runner ActionRunner, hour int, log *slog.Logger) *AutomatedActions {
	location, _ := time.LoadLocation("Europe/Moscow")
	if location == nil {
		location = time.UTC
	}
	if hour < 0 || hour > 23 {
		hour = 12
	}

	return &AutomatedActions{
		runner:   runner,
		hour:     hour,
		location: location,
		log:      log,
	}
}

func (j *AutomatedActions) Name() string {
	return automatedActionsName
}

func (j *AutomatedActions) NextRun(now time.Time) time.Time {
	local := now.In(j.location)

	next := time.Date(local.Year(), local.Month(), local.Day(), j.hour, 0, 0, 0, j.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Retries повтор рассылки отправил бы сообщения второй раз
func (j *AutomatedActions) Retries() []time.Duration {
	return nil
}

func (j *AutomatedActions) Run(ctx context.Context) error {
	result := j.runner.AutomatedActions(ctx)
	j.log.Info("automated actions finished",
		"welcome_messages", result.WelcomeMessages,
		"diagnostic_reminders", result.DiagnosticReminders,
		"personal_offers", result.PersonalOffers,
		"failed", result.Failed)
	return nil
}
