package segmentation

import (
	"context"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// Compute сегментация пользователя по текущим данным хранилища
func (s *Service) Compute(ctx context.Context, tgUserID int64) (*domain.Segmentation, error) {
	analytics, err := s.Analytics.UserAnalytics(ctx, tgUserID)
	if err != nil {
		return nil, err
	}

	counts := domain.SegmentCounts{
		SessionCount:            analytics.TotalSessions,
		EventCount:              analytics.TotalEvents,
		HasCompletedDiagnostics: analytics.DiagnosticsCompleted,
	}
	segment, engagement, potential := Classify(counts)

	result := &domain.Segmentation{
		Segment:              segment,
		EngagementLevel:      engagement,
		ConversionPotential:  potential,
		LastActivity:         analytics.LastSession,
		TotalSessions:        analytics.TotalSessions,
		TotalEvents:          analytics.TotalEvents,
		DiagnosticsCompleted: analytics.DiagnosticsCompleted,
	}

	// теги вспомогательные: их сбой не должен ронять классификацию
	result.ContentPreference = s.contentPreferences(ctx, tgUserID)
	result.BehaviorPatterns = s.behaviorPatterns(ctx, tgUserID)
	return result, nil
}

func (s *Service) contentPreferences(ctx context.Context, tgUserID int64) []string {
	contentTypes, err := s.Analytics.ContentTypeCounts(ctx, tgUserID)
	if err != nil {
		s.Log.Warn("content preferences unavailable", "error", err, "tg_user_id", tgUserID)
		return []string{}
	}
	conversationTypes, err := s.Analytics.ConversationTypeCounts(ctx, tgUserID)
	if err != nil {
		s.Log.Warn("conversation preferences unavailable", "error", err, "tg_user_id", tgUserID)
		conversationTypes = nil
	}
	return ContentPreferences(contentTypes, conversationTypes)
}

func (s *Service) behaviorPatterns(ctx context.Context, tgUserID int64) []string {
	patterns := make([]string, 0, 3)

	if visits, err := s.Analytics.RecentSourceVisits(ctx, tgUserID, sourceVisitsWindow); err != nil {
		s.Log.Warn("source visits unavailable", "error", err, "tg_user_id", tgUserID)
	} else if p, ok := SourcePattern(visits); ok {
		patterns = append(patterns, p)
	}

	if times, err := s.Analytics.EventTimes(ctx, tgUserID); err != nil {
		s.Log.Warn("event times unavailable", "error", err, "tg_user_id", tgUserID)
	} else if p, ok := HourPattern(times); ok {
		patterns = append(patterns, p)
	}

	if starts, err := s.Analytics.SessionStarts(ctx, tgUserID); err != nil {
		s.Log.Warn("session starts unavailable", "error", err, "tg_user_id", tgUserID)
	} else if p, ok := FrequencyPattern(starts, s.now()); ok {
		patterns = append(patterns, p)
	}

	return patterns
}

// Segment пересчитывается на каждый запрос и нигде не хранится.
// При ошибке хранилища возвращается сегмент новичка
func (s *Service) Segment(ctx context.Context, tgUserID int64) *domain.Segmentation {
	result, err := s.Compute(ctx, tgUserID)
	if err != nil {
		s.Log.Warn("segment unavailable", "error", err, "tg_user_id", tgUserID)
		return neutralSegmentation()
	}
	return result
}

func neutralSegmentation() *domain.Segmentation {
	return &domain.Segmentation{
		Segment:             domain.SegmentNewcomer,
		EngagementLevel:     domain.EngagementLow,
		ConversionPotential: domain.ConversionLow,
		ContentPreference:   []string{},
		BehaviorPatterns:    []string{},
	}
}

// FindUsers пользователи, у которых все поля сегментации совпадают с критериями
func (s *Service) FindUsers(ctx context.Context, criteria map[string]any) []int64 {
	ids, err := s.Users.ListIDs(ctx)
	if err != nil {
		s.Log.Warn("users unavailable for segment search", "error", err)
		return []int64{}
	}

	matched := make([]int64, 0)
	for _, id := range ids {
		result, err := s.Compute(ctx, id)
		if err != nil {
			s.Log.Warn("failed to segment user", "error", err, "tg_user_id", id)
			continue
		}
		if Matches(*result, criteria) {
			matched = append(matched, id)
		}
	}
	return matched
}

// Refresh считает пользователей по сегментам среди активных за последние 30 дней
func (s *Service) Refresh(ctx context.Context) (*domain.SegmentRefresh, error) {
	ids, err := s.Analytics.ActiveUsers(ctx, s.now().Add(-defaultActiveWindow))
	if err != nil {
		return nil, err
	}

	out := &domain.SegmentRefresh{Segments: make(map[domain.Segment]int, len(domain.Segments))}
	for _, seg := range domain.Segments {
		out.Segments[seg] = 0
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		result, err := s.Compute(ctx, id)
		if err != nil {
			s.Log.Error("failed to refresh segment", "error", err, "tg_user_id", id)
			continue
		}
		out.Segments[result.Segment]++
		out.TotalProcessed++
		s.Log.Debug("segment refreshed",
			"tg_user_id", id,
			"segment", result.Segment,
			"engagement_level", result.EngagementLevel)
	}

	s.Log.Info("segments refreshed", "total_processed", out.TotalProcessed)
	return out, nil
}

// Insights сводка по сегменту. Суммы, источники и поведение собираются по первым 100
// пользователям, а делятся на полное число пользователей сегмента
func (s *Service) Insights(ctx context.Context, segment domain.Segment) (*domain.SegmentInsights, error) {
	if !segment.IsValid() {
		return nil, domain.NewValidationError("segment", "must be one of newcomer, engaged, converter, loyal")
	}

	out := &domain.SegmentInsights{
		Segment:          segment,
		TopSources:       []domain.CountedValue{},
		TopContentTypes:  []domain.CountedValue{},
		BehaviorPatterns: []domain.CountedValue{},
	}

	users := s.FindUsers(ctx, map[string]any{"segment": string(segment)})
	out.UsersCount = len(users)
	if len(users) == 0 {
		return out, nil
	}

	var (
		totalSessions int64
		totalEvents   int64
		converted     int
		sources       = make(map[string]int64)
		contentTypes  = make(map[string]int64)
		patterns      = make(map[string]int64)
	)

	analysed := users
	if len(analysed) > insightsUsersLimit {
		analysed = analysed[:insightsUsersLimit]
	}
	for _, id := range analysed {
		result, err := s.Compute(ctx, id)
		if err != nil {
			s.Log.Warn("failed to analyse user", "error", err, "tg_user_id", id)
			continue
		}
		totalSessions += result.TotalSessions
		totalEvents += result.TotalEvents
		if result.DiagnosticsCompleted {
			converted++
		}
		for _, p := range result.BehaviorPatterns {
			if strings.Contains(p, "source_") {
				sources[p]++
			}
			patterns[p]++
		}
		for _, pref := range result.ContentPreference {
			if strings.HasPrefix(pref, "likes_") {
				contentTypes[pref]++
			}
		}
	}

	n := float64(len(users))
	out.AvgSessions = float64(totalSessions) / n
	out.AvgEvents = float64(totalEvents) / n
	out.ConversionRate = float64(converted) / n
	out.TopSources = topCounted(sources, 5)
	out.TopContentTypes = topCounted(contentTypes, 5)
	out.BehaviorPatterns = topCounted(patterns, 10)
	return out, nil
}
