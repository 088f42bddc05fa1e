package bot

import (
	"context"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot/texts"
)

// ReminderStats результат одного прохода напоминаний
type ReminderStats struct {
	First  int
	Second int
	Failed int
}

type reminderTemplate struct {
	text   string
	button string
}

var reminderTemplates = map[domain.ReminderKind]reminderTemplate{
	domain.ReminderFirst:  {text: texts.FirstReminder, button: texts.ButtonFirstRemind},
	domain.ReminderSecond: {text: texts.SecondReminder, button: texts.ButtonSecondRemind},
}

func (s *Service) reminderDelay(kind domain.ReminderKind) time.Duration {
	if d, ok := s.ReminderDelays[kind]; ok && d > 0 {
		return d
	}
	return kind.DefaultDelay()
}

// SendReminders напоминания пользователям, не начавшим диагностику.
// Флаг отправки ставится только после успешной доставки
func (s *Service) SendReminders(ctx context.Context, now time.Time) (ReminderStats, error) {
	var stats ReminderStats

	for _, kind := range []domain.ReminderKind{domain.ReminderFirst, domain.ReminderSecond} {
		users, err := s.Users.ListForReminder(ctx, kind, now.Add(-s.reminderDelay(kind)))
		if err != nil {
			return stats, err
		}
		s.Log.Info("users for reminder", "kind", kind, "count", len(users))

		tmpl := reminderTemplates[kind]
		keyboard := domain.URLButton(tmpl.button, s.diagnosticsURL())
		for _, user := range users {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := s.send(ctx, user.UserID, tmpl.text, keyboard); err != nil {
				stats.Failed++
				continue
			}
			if err := s.Users.MarkReminderSent(ctx, user.UserID, kind); err != nil {
				s.Log.Error("failed to mark reminder sent", "error", err, "user_id", user.UserID, "kind", kind)
				stats.Failed++
				continue
			}

			switch kind {
			case domain.ReminderFirst:
				stats.First++
			case domain.ReminderSecond:
				stats.Second++
			}
			s.Log.Info("reminder sent", "user_id", user.UserID, "kind", kind)
		}
	}
	return stats, nil
}
