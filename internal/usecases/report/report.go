package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/segmentation"
	"github.com/google/uuid"
)

func cacheKey(cookieID string) string {
	return "report:" + cookieID
}

// PersonalReport отчёт по cookie_id: путь посетителя, сегментация и рекомендации, если cookie привязан к Telegram
func (s *Service) PersonalReport(ctx context.Context, cookieID string) (*domain.PersonalReport, error) {
	cookieID = strings.TrimSpace(cookieID)
	if cookieID == "" {
		return nil, domain.NewValidationError("cookie_id", "is required")
	}

	// кэшируется только путь посетителя, сегмент пересчитывается на каждый запрос
	if cached, ok := s.cached(ctx, cookieID); ok {
		s.attachSegment(ctx, cached)
		return cached, nil
	}

	sessions, err := s.Sessions.ListByCookie(ctx, cookieID)
	if err != nil {
		s.Log.Warn("sessions unavailable for report", "error", err, "cookie_id", cookieID)
		sessions = nil
	}
	events, err := s.Events.ListByCookie(ctx, cookieID)
	if err != nil {
		s.Log.Warn("events unavailable for report", "error", err, "cookie_id", cookieID)
		events = nil
	}

	report := &domain.PersonalReport{
		CookieID:               cookieID,
		Journey:                BuildJourney(sessions, events),
		SessionDurationSeconds: SessionDuration(sessions, events),
		GeneratedAt:            s.now(),
	}

	if user, err := s.Identities.ResolveByCookie(ctx, cookieID); err == nil {
		report.User = user
		s.attachSegment(ctx, report)
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.Log.Warn("identity unavailable for report", "error", err, "cookie_id", cookieID)
	}

	report.ArchiveURL = s.archive(ctx, report)
	s.store(ctx, report)
	return report, nil
}

func (s *Service) attachSegment(ctx context.Context, report *domain.PersonalReport) {
	if report.User == nil || s.Segments == nil {
		return
	}
	seg := s.Segments.Segment(ctx, report.User.UserID)
	report.Segmentation = seg
	report.Recommendations = segmentation.RecommendationsFor(report.User.UserID, seg).Recommendations
}

// BuildJourney шаги пути в хронологическом порядке: открытия MiniApp по сессиям, остальное по событиям
func BuildJourney(sessions []domain.Session, events []domain.Event) []domain.JourneyStep {
	steps := make([]domain.JourneyStep, 0, len(sessions)+len(events))

	for _, session := range sessions {
		details := domain.Payload{
			"session_id": session.ID,
			"page":       session.PageID,
			"device":     session.DeviceType,
		}.Compact()
		steps = append(steps, domain.JourneyStep{
			Kind:      domain.JourneyMiniappOpen,
			Title:     "Открытие MiniApp",
			Details:   details,
			Timestamp: session.SessionStart,
		})
	}

	for _, e := range events {
		step, ok := journeyStep(e)
		if !ok {
			continue
		}
		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Timestamp.Before(steps[j].Timestamp)
	})
	return steps
}

func journeyStep(e domain.Event) (domain.JourneyStep, bool) {
	step := domain.JourneyStep{Timestamp: e.CreatedAt, Details: domain.Payload{}}
	custom := e.CustomData

	switch {
	case e.EventName == domain.EventNameContentView:
		step.Kind = domain.JourneyContent
		step.Title = firstNonEmpty(custom.String("content_title"), custom.String("content_type"), "Просмотр контента")
		step.Details = domain.Payload{
			"content_type": custom.String("content_type"),
			"content_id":   custom.String("content_id"),
			"section":      e.Section,
			"time_spent":   e.TimeSpent,
			"scroll_depth": e.ScrollDepth,
		}.Compact()
	case e.EventName == domain.EventNameAIInteraction:
		step.Kind = domain.JourneyAI
		step.Title = "Диалог с AI помощником"
		step.Details = domain.Payload{
			"messages_count":    custom["messages_count"],
			"topics":            custom["topics"],
			"conversation_type": custom.String("conversation_type"),
			"duration":          e.TimeSpent,
		}.Compact()
	case e.EventName == domain.EventNameDiagnosticCompleted:
		step.Kind = domain.JourneyDiagnostics
		step.Title = "Диагностика пройдена"
		step.Details = domain.Payload{
			"completion_rate": e.CompletionRate,
			"results":         custom["results"],
		}.Compact()
	case e.EventType == domain.EventTypeGame:
		step.Kind = domain.JourneyGame
		step.Title = fmt.Sprintf("Игра: %s", custom.String("game_type"))
		step.Details = domain.Payload{
			"action_type": custom.String("action_type"),
			"score":       custom["score"],
			"achievement": custom["achievement"],
		}.Compact()
	case e.EventName == domain.EventNameCTAClick:
		step.Kind = domain.JourneyCTA
		step.Title = firstNonEmpty(custom.String("cta_text"), custom.String("cta_type"))
		step.Details = domain.Payload{
			"cta_type":     custom.String("cta_type"),
			"cta_location": custom["cta_location"],
		}.Compact()
	default:
		return domain.JourneyStep{}, false
	}
	return step, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SessionDuration суммарная длительность закрытых сессий; если закрытых нет, промежуток между первым и последним событием
func SessionDuration(sessions []domain.Session, events []domain.Event) int64 {
	var total int64
	for _, session := range sessions {
		switch {
		case session.SessionDuration != nil:
			total += *session.SessionDuration
		case session.SessionEnd != nil:
			total += int64(session.SessionEnd.Sub(session.SessionStart).Seconds())
		}
	}
	if total > 0 || len(events) < 2 {
		return total
	}

	first, last := events[0].CreatedAt, events[0].CreatedAt
	for _, e := range events[1:] {
		if e.CreatedAt.Before(first) {
			first = e.CreatedAt
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	return int64(last.Sub(first).Seconds())
}

func (s *Service) cached(ctx context.Context, cookieID string) (*domain.PersonalReport, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.Get(ctx, cacheKey(cookieID))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.Log.Warn("report cache read failed", "error", err, "cookie_id", cookieID)
		}
		return nil, false
	}
	var report domain.PersonalReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		s.Log.Warn("broken report cache entry", "error", err, "cookie_id", cookieID)
		return nil, false
	}
	return &report, true
}

func (s *Service) store(ctx context.Context, report *domain.PersonalReport) {
	if s.Cache == nil || s.Config.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.Log.Warn("failed to marshal report", "error", err, "cookie_id", report.CookieID)
		return
	}
	if err := s.Cache.Set(ctx, cacheKey(report.CookieID), string(data), s.Config.CacheTTL); err != nil {
		s.Log.Warn("report cache write failed", "error", err, "cookie_id", report.CookieID)
	}
}

// archive снимок отчёта в S3; пустая строка, если архив не настроен или недоступен
func (s *Service) archive(ctx context.Context, report *domain.PersonalReport) string {
	if s.Archive == nil {
		return ""
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.Log.Warn("failed to marshal report", "error", err, "cookie_id", report.CookieID)
		return ""
	}

	path := archivePath(report.CookieID, uuid.NewString())
	if err := s.Archive.PutObject(ctx, path, data, "application/json"); err != nil {
		s.Log.Warn("failed to archive report", "error", err, "cookie_id", report.CookieID, "path", path)
		return ""
	}
	url, err := s.Archive.GetPresignedURL(ctx, path, s.Config.ArchiveURLTTL)
	if err != nil {
		s.Log.Warn("failed to sign report url", "error", err, "path", path)
		return ""
	}
	return url
}

// Invalidate сбрасывает закэшированный отчёт
func (s *Service) Invalidate(ctx context.Context, cookieID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cacheKey(cookieID)); err != nil {
		s.Log.Warn("report cache delete failed", "error", err, "cookie_id", cookieID)
	}
}
