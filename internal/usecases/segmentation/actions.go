package segmentation

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const (
	welcomeText = "Добро пожаловать в SpaceGrow! 🌱\n\n" +
		"Начните с бесплатной диагностики: она покажет, с чего лучше стартовать именно вам."
	diagnosticReminderText = "Вы уже познакомились с материалами SpaceGrow. " +
		"Пройдите диагностику, чтобы получить персональный путь развития."
	personalOfferText = "Спасибо, что прошли диагностику! " +
		"Мы подготовили для вас персональные материалы по её результатам."
)

type outreach struct {
	criteria map[string]any
	limit    int
	text     string
	counter  *int
}

// AutomatedActions рассылки по сегментам. Без мессенджера только считает адресатов
func (s *Service) AutomatedActions(ctx context.Context) *domain.AutomatedActionsResult {
	result := &domain.AutomatedActionsResult{}

	plan := []outreach{
		{
			criteria: map[string]any{"segment": string(domain.SegmentNewcomer), "diagnostics_completed": false},
			limit:    welcomeLimit,
			text:     welcomeText,
			counter:  &result.WelcomeMessages,
		},
		{
			criteria: map[string]any{"segment": string(domain.SegmentEngaged), "diagnostics_completed": false},
			limit:    reminderLimit,
			text:     diagnosticReminderText,
			counter:  &result.DiagnosticReminders,
		},
		{
			criteria: map[string]any{"segment": string(domain.SegmentConverter)},
			limit:    offerLimit,
			text:     personalOfferText,
			counter:  &result.PersonalOffers,
		},
	}

	keyboard := domain.WebAppButton("Открыть SpaceGrow", s.Config.MiniAppURL)
	for _, step := range plan {
		users := s.FindUsers(ctx, step.criteria)
		if len(users) > step.limit {
			users = users[:step.limit]
		}
		for _, id := range users {
			if ctx.Err() != nil {
				return result
			}
			if s.Messenger != nil {
				if err := s.Messenger.SendMessage(ctx, id, step.text, keyboard); err != nil {
					s.Log.Warn("automated message failed", "error", err, "tg_user_id", id, "segment", step.criteria["segment"])
					result.Failed++
					continue
				}
			}
			*step.counter++
		}
	}

	s.Log.Info("automated actions completed",
		"welcome_messages", result.WelcomeMessages,
		"diagnostic_reminders", result.DiagnosticReminders,
		"personal_offers", result.PersonalOffers,
		"failed", result.Failed)
	return result
}
