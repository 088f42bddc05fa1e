package bot

import (
	"context"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot/texts"
)

func (s *Service) HandleCommand(ctx context.Context, from *domain.TelegramUser, chatID int64, command string) error {
	switch command {
	case "start":
		return s.HandleStart(ctx, from, chatID)
	case "help":
		return s.send(ctx, chatID, texts.Help, s.appButton())
	case "site":
		return s.send(ctx, chatID, texts.Site, s.appButton())
	case "diagnostics":
		return s.HandleDiagnostics(ctx, from, chatID)
	default:
		return s.send(ctx, chatID, texts.FormatUnknownCommand(command), nil)
	}
}

// HandleStart регистрирует пользователя; повторный /start до начала диагностики обновляет started_at
func (s *Service) HandleStart(ctx context.Context, from *domain.TelegramUser, chatID int64) error {
	user := &domain.User{
		UserID:   from.ID,
		Username: from.Username,
		LastName: from.LastName,
	}
	if from.FirstName != "" {
		firstName := from.FirstName
		user.FirstName = &firstName
	}

	// приветствие отправляем даже если запись пользователя не удалась
	if err := s.Users.CreateOrUpdate(ctx, user); err != nil {
		s.Log.Error("failed to register bot user", "error", err, "user_id", from.ID)
	}

	return s.send(ctx, chatID, texts.FormatStart(from.FirstName), s.appButton())
}

func (s *Service) HandleDiagnostics(ctx context.Context, from *domain.TelegramUser, chatID int64) error {
	if err := s.Users.MarkDiagnosticsStarted(ctx, from.ID); err != nil {
		s.Log.Warn("failed to mark diagnostics started", "error", err, "user_id", from.ID)
	}
	return s.send(ctx, chatID, texts.Diagnostics, domain.WebAppButton(texts.ButtonDiagnostics, s.diagnosticsURL()))
}

func (s *Service) HandleText(ctx context.Context, from *domain.TelegramUser, chatID int64, text string) error {
	switch {
	case texts.ContainsAny(text, texts.GreetingWords):
		return s.send(ctx, chatID, texts.Greeting, s.appButton())
	case texts.ContainsAny(text, texts.ServiceWords):
		return s.send(ctx, chatID, texts.Services, s.appButton())
	case texts.ContainsAny(text, texts.ContactWords):
		return s.send(ctx, chatID, texts.Contacts, nil)
	default:
		return s.send(ctx, chatID, texts.Fallback, s.appButton())
	}
}

func (s *Service) appButton() *domain.InlineKeyboardMarkup {
	return domain.WebAppButton(texts.ButtonOpenApp, s.MiniAppURL)
}

func (s *Service) diagnosticsURL() string {
	if s.MiniAppURL == "" {
		return ""
	}
	return s.MiniAppURL + "#diagnostics"
}
