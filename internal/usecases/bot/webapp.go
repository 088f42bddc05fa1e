package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot/texts"
)

const webAppDiagnosticsCompleted = "diagnostics_completed"

// DiagnosticsCompleted payload MiniApp сообщает о завершённой диагностике
func DiagnosticsCompleted(payload domain.Payload) bool {
	if payload.String("type") == webAppDiagnosticsCompleted {
		return true
	}
	completed, _ := payload["completed"].(bool)
	return completed
}

// HandleWebAppData данные, отправленные MiniApp через sendData
func (s *Service) HandleWebAppData(ctx context.Context, from *domain.TelegramUser, chatID int64, data *domain.WebAppData) error {
	if data == nil {
		return nil
	}

	var payload domain.Payload
	if err := json.Unmarshal([]byte(data.Data), &payload); err != nil {
		s.Log.Warn("invalid web_app_data payload", "error", err, "user_id", from.ID)
		return nil
	}
	if !DiagnosticsCompleted(payload) {
		s.Log.Debug("web_app_data ignored", "user_id", from.ID, "type", payload.String("type"))
		return nil
	}

	document := domain.DiagnosticsDocument(payload)
	if err := s.Diagnostics.SaveDiagnostics(ctx, from.ID, payload.String("cookie_id"), document); err != nil {
		return fmt.Errorf("save diagnostics from web app: %w", err)
	}
	if err := s.Users.MarkDiagnosticsCompleted(ctx, from.ID); err != nil {
		s.Log.Error("failed to mark diagnostics completed", "error", err, "user_id", from.ID)
		return fmt.Errorf("mark diagnostics completed: %w", err)
	}

	s.Log.Info("diagnostics completed via web app", "user_id", from.ID)
	return s.send(ctx, chatID, texts.DiagnosticsSaved, nil)
}
