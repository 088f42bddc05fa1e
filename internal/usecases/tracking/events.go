package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// EventInput произвольное событие журнала
type EventInput struct {
	SessionID        int64          `json:"session_id"`
	TgUserID         *int64         `json:"tg_user_id,omitempty"`
	EventType        string         `json:"event_type"`
	EventName        string         `json:"event_name"`
	EventCategory    *string        `json:"event_category,omitempty"`
	EventSubtype     *string        `json:"event_subtype,omitempty"`
	Page             *string        `json:"page,omitempty"`
	ElementID        *string        `json:"element_id,omitempty"`
	ElementType      *string        `json:"element_type,omitempty"`
	Section          *string        `json:"section,omitempty"`
	ScrollDepth      *int64         `json:"scroll_depth,omitempty"`
	TimeSpent        *int64         `json:"time_spent,omitempty"`
	InteractionCount *int64         `json:"interaction_count,omitempty"`
	PreviousEventID  *int64         `json:"previous_event_id,omitempty"`
	StepNumber       *int64         `json:"step_number,omitempty"`
	CompletionRate   *float64       `json:"completion_rate,omitempty"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
	Metadata         domain.Payload `json:"metadata,omitempty"`
	CustomData       domain.Payload `json:"custom_data,omitempty"`
}

func (in EventInput) validate() error {
	if in.SessionID <= 0 {
		return domain.NewValidationError("session_id", "is required")
	}
	if in.EventType == "" {
		return domain.NewValidationError("event_type", "is required")
	}
	if in.EventName == "" {
		return domain.NewValidationError("event_name", "is required")
	}
	return nil
}

func (in EventInput) toEvent() *domain.Event {
	return &domain.Event{
		SessionID:        in.SessionID,
		TgUserID:         in.TgUserID,
		EventType:        in.EventType,
		EventName:        in.EventName,
		Page:             in.Page,
		Metadata:         in.Metadata,
		EventCategory:    in.EventCategory,
		EventSubtype:     in.EventSubtype,
		ElementID:        in.ElementID,
		ElementType:      in.ElementType,
		Section:          in.Section,
		ScrollDepth:      in.ScrollDepth,
		TimeSpent:        in.TimeSpent,
		InteractionCount: in.InteractionCount,
		PreviousEventID:  in.PreviousEventID,
		StepNumber:       in.StepNumber,
		CompletionRate:   in.CompletionRate,
		ErrorMessage:     in.ErrorMessage,
		CustomData:       in.CustomData,
	}
}

// LogEvent добавляет событие и увеличивает events_count сессии одной транзакцией
func (s *Service) LogEvent(ctx context.Context, in EventInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	return s.write(ctx, in.toEvent(), nil)
}

// write событие, счётчик сессии и дополнительные записи (факты, диагностика) либо фиксируются вместе, либо не пишутся вовсе.
// Публикация в Kafka идёт после коммита, вне транзакции
func (s *Service) write(ctx context.Context, e *domain.Event, extra func(ctx context.Context, q persistence.Querier) error) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	err := s.DB.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := s.Sessions.IncrementEventsTx(ctx, tx, e.SessionID); err != nil {
			return err
		}
		if _, err := s.Events.InsertTx(ctx, tx, e); err != nil {
			return err
		}
		if extra != nil {
			return extra(ctx, tx)
		}
		return nil
	})
	if err != nil {
		s.Log.Error("failed to log event",
			"error", err,
			"session_id", e.SessionID,
			"event_type", e.EventType,
			"event_name", e.EventName)
		return 0, fmt.Errorf("log event %s/%s: %w", e.EventType, e.EventName, err)
	}

	s.publish(ctx, e)
	return e.ID, nil
}

// publish ошибки публикации только логируются
func (s *Service) publish(ctx context.Context, e *domain.Event) {
	if s.Publisher == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		s.Log.Warn("failed to marshal event for publishing", "error", err, "event_id", e.ID)
		return
	}
	if err := s.Publisher.Send(ctx, strconv.FormatInt(e.SessionID, 10), payload); err != nil {
		s.Log.Warn("failed to publish event", "error", err, "event_id", e.ID)
	}
}

// UserEvents последние события пользователя; при ошибке хранилища пустой список
func (s *Service) UserEvents(ctx context.Context, tgUserID int64, limit int) []domain.EventWithSession {
	events, err := s.Events.ListByUser(ctx, tgUserID, limit)
	if err != nil {
		s.Log.Warn("user events unavailable", "error", err, "tg_user_id", tgUserID)
		return []domain.EventWithSession{}
	}
	return events
}

// SessionEvents события сессии в порядке записи
func (s *Service) SessionEvents(ctx context.Context, sessionID int64) []domain.Event {
	events, err := s.Events.ListBySession(ctx, sessionID)
	if err != nil {
		s.Log.Warn("session events unavailable", "error", err, "session_id", sessionID)
		return []domain.Event{}
	}
	return events
}
