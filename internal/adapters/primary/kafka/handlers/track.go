package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	kafkaPorts "github.com/bormotovilya-ops/SpaceGrow/internal/ports/kafka"
	"github.com/bormotovilya-ops/SpaceGrow/internal/usecases/tracking"
)

// TrackMessage конверт команды трекинга: kind + тело в формате HTTP API
type TrackMessage struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Виды команд
const (
	KindSessionStart        = "session_start"
	KindSessionEnd          = "session_end"
	KindEvent               = "event"
	KindSourceVisit         = "source_visit"
	KindMiniappOpen         = "miniapp_open"
	KindContentView         = "content_view"
	KindAIInteraction       = "ai_interaction"
	KindDiagnosticCompleted = "diagnostic_completed"
	KindGameAction          = "game_action"
	KindCTAClick            = "cta_click"
	KindPersonalPathView    = "personal_path_view"
	KindIdentityLink        = "identity_link"
)

// TrackHandler применяет команды трекинга из Kafka через тот же use case, что и HTTP
type TrackHandler struct {
	Tracking *tracking.Service
	Log      *slog.Logger

	routes map[string]func(ctx context.Context, raw json.RawMessage) error
}

func NewTrackHandler(tracker *tracking.Service, log *slog.Logger) kafkaPorts.MessageHandler {
	h := &TrackHandler{Tracking: tracker, Log: log}
	h.routes = map[string]func(ctx context.Context, raw json.RawMessage) error{
		KindSessionStart: h.sessionStart,
		KindSessionEnd:   h.sessionEnd,
		KindEvent: func(ctx context.Context, raw json.RawMessage) error {
			return apply(ctx, raw, func(ctx context.Context, in tracking.EventInput) error {
				_, err := tracker.LogEvent(ctx, in)
				return err
			})
		},
		KindSourceVisit:         logWith(tracker.LogSourceVisit),
		KindMiniappOpen:         logWith(tracker.LogMiniappOpen),
		KindContentView:         logWith(tracker.LogContentView),
		KindAIInteraction:       logWith(tracker.LogAIInteraction),
		KindDiagnosticCompleted: logWith(tracker.LogDiagnosticCompleted),
		KindGameAction:          logWith(tracker.LogGameAction),
		KindCTAClick:            logWith(tracker.LogCTAClick),
		KindPersonalPathView:    logWith(tracker.LogPersonalPathView),
		KindIdentityLink:        h.identityLink,
	}
	return h
}

// HandleMessage невалидные сообщения помечаются как BusinessError: повтор их не исправит
func (h *TrackHandler) HandleMessage(ctx context.Context, key string, value []byte) error {
	var msg TrackMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		h.Log.Warn("malformed tracking message", "error", err, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("failed to unmarshal tracking message: %w", err))
	}

	route, ok := h.routes[msg.Kind]
	if !ok {
		h.Log.Warn("unknown tracking message kind", "kind", msg.Kind, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("unknown kind %q", msg.Kind))
	}

	if err := route(ctx, msg.Payload); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrSessionNotFound) {
			h.Log.Warn("tracking message rejected", "error", err, "kind", msg.Kind, "key", key)
			return domain.WrapBusinessError(err)
		}
		return fmt.Errorf("apply %s: %w", msg.Kind, err)
	}

	h.Log.Debug("tracking message applied", "kind", msg.Kind, "key", key)
	return nil
}

func apply[T any](ctx context.Context, raw json.RawMessage, fn func(context.Context, T) error) error {
	var in T
	if err := json.Unmarshal(raw, &in); err != nil {
		return domain.NewValidationError("payload", err.Error())
	}
	return fn(ctx, in)
}

func logWith[T any](fn func(context.Context, T) (tracking.LogResult, error)) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, raw json.RawMessage) error {
		return apply(ctx, raw, func(ctx context.Context, in T) error {
			_, err := fn(ctx, in)
			return err
		})
	}
}

type sessionStart struct {
	domain.SessionMetadata
	CookieID string `json:"cookie_id"`
	TgUserID *int64 `json:"tg_user_id,omitempty"`
}

func (h *TrackHandler) sessionStart(ctx context.Context, raw json.RawMessage) error {
	return apply(ctx, raw, func(ctx context.Context, in sessionStart) error {
		_, err := h.Tracking.OpenSession(ctx, in.CookieID, in.TgUserID, in.SessionMetadata)
		return err
	})
}

func (h *TrackHandler) sessionEnd(ctx context.Context, raw json.RawMessage) error {
	return apply(ctx, raw, func(ctx context.Context, in struct {
		SessionID int64 `json:"session_id"`
	}) error {
		closed, err := h.Tracking.CloseSession(ctx, in.SessionID)
		if err != nil {
			return err
		}
		if !closed {
			h.Log.Debug("session already closed or missing", "session_id", in.SessionID)
		}
		return nil
	})
}

type identityLink struct {
	TgUserID  int64   `json:"tg_user_id"`
	CookieID  string  `json:"cookie_id"`
	Source    string  `json:"source"`
	MiniappID *string `json:"miniapp_id,omitempty"`
}

func (h *TrackHandler) identityLink(ctx context.Context, raw json.RawMessage) error {
	return apply(ctx, raw, func(ctx context.Context, in identityLink) error {
		return h.Tracking.LinkIdentity(ctx, in.TgUserID, in.CookieID, domain.IdentitySource(in.Source), in.MiniappID)
	})
}
