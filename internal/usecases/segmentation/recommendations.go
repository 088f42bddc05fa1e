package segmentation

import (
	"context"
	"slices"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

type segmentPlaybook struct {
	recommendation domain.Recommendation
	nextAction     string
}

var playbooks = map[domain.Segment]segmentPlaybook{
	domain.SegmentNewcomer: {
		recommendation: domain.Recommendation{Type: "onboarding", Priority: "high", Action: "diagnostic_start", Message: "Показать приветственный тур по MiniApp"},
		nextAction:     "diagnostic_start",
	},
	domain.SegmentEngaged: {
		recommendation: domain.Recommendation{Type: "conversion", Priority: "high", Action: "personal_path_view", Message: "Предложить персональную диагностику"},
		nextAction:     "personal_path_view",
	},
	domain.SegmentConverter: {
		recommendation: domain.Recommendation{Type: "retention", Priority: "medium", Action: "content_recommendation", Message: "Показать дополнительные материалы по теме"},
		nextAction:     "content_recommendation",
	},
	domain.SegmentLoyal: {
		recommendation: domain.Recommendation{Type: "upsell", Priority: "medium", Action: "advanced_features", Message: "Предложить премиум услуги"},
		nextAction:     "advanced_features",
	},
}

// RecommendationsFor шаблонные рекомендации по сегментации
func RecommendationsFor(tgUserID int64, seg *domain.Segmentation) *domain.UserRecommendations {
	out := &domain.UserRecommendations{
		UserID:             tgUserID,
		Segment:            seg.Segment,
		EngagementLevel:    seg.EngagementLevel,
		Recommendations:    []domain.Recommendation{},
		NextBestActions:    []string{},
		ContentSuggestions: []domain.ContentSuggestion{},
	}

	if p, ok := playbooks[seg.Segment]; ok {
		out.Recommendations = append(out.Recommendations, p.recommendation)
		out.NextBestActions = append(out.NextBestActions, p.nextAction)
	}

	if slices.Contains(seg.ContentPreference, "likes_section") {
		out.ContentSuggestions = append(out.ContentSuggestions, domain.ContentSuggestion{
			Type:    "section",
			Content: "Похожие секции для изучения",
		})
	}
	if slices.Contains(seg.ContentPreference, "ai_general") {
		out.ContentSuggestions = append(out.ContentSuggestions, domain.ContentSuggestion{
			Type:    "ai_interaction",
			Content: "Продолжить разговор с AI помощником",
		})
	}
	return out
}

func (s *Service) Recommendations(ctx context.Context, tgUserID int64) *domain.UserRecommendations {
	return RecommendationsFor(tgUserID, s.Segment(ctx, tgUserID))
}
