package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// Диалоги этих типов не попадают в хранилище ни в каком виде
var excludedConversationTypes = map[string]struct{}{
	"expert":       {},
	"deal_closure": {},
}

// IsExcludedConversation тип диалога из закрытого списка
func IsExcludedConversation(conversationType string) bool {
	_, ok := excludedConversationTypes[strings.ToLower(strings.TrimSpace(conversationType))]
	return ok
}

// Visit общие поля всех бизнес-событий
type Visit struct {
	SessionID int64  `json:"session_id"`
	CookieID  string `json:"cookie_id"`
	TgUserID  *int64 `json:"tg_user_id,omitempty"`
}

func (v Visit) validate() error {
	if v.SessionID <= 0 {
		return domain.NewValidationError("session_id", "is required")
	}
	if strings.TrimSpace(v.CookieID) == "" {
		return domain.NewValidationError("cookie_id", "is required")
	}
	return nil
}

func (v Visit) cookiePtr() *string {
	c := v.CookieID
	return &c
}

// LogResult id события; Logged=false, если событие отфильтровано политикой
type LogResult struct {
	ID     int64 `json:"id"`
	Logged bool  `json:"logged"`
}

var notLogged = LogResult{}

func logged(id int64) LogResult {
	return LogResult{ID: id, Logged: true}
}

func ptr[T any](v T) *T {
	return &v
}

func (s *Service) event(v Visit, eventType, eventName, category string) *domain.Event {
	return &domain.Event{
		SessionID:     v.SessionID,
		TgUserID:      v.TgUserID,
		EventType:     eventType,
		EventName:     eventName,
		EventCategory: ptr(category),
		CreatedAt:     s.now(),
	}
}

type SourceVisit struct {
	Visit
	Source    string            `json:"source"`
	UTMParams map[string]string `json:"utm_params,omitempty"`
	Referrer  *string           `json:"referrer,omitempty"`
}

func (s *Service) LogSourceVisit(ctx context.Context, in SourceVisit) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	e := s.event(in.Visit, domain.EventTypeVisit, domain.EventNameSourceVisit, domain.EventCategoryAcquisition)
	custom := domain.Payload{
		"source":    in.Source,
		"cookie_id": in.CookieID,
		"referrer":  in.Referrer,
	}
	for _, key := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"} {
		if value, ok := in.UTMParams[key]; ok {
			custom[key] = value
		}
	}
	e.CustomData = custom.Compact()

	id, err := s.write(ctx, e, nil)
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type MiniappOpen struct {
	Visit
	Device string `json:"device"`
	PageID string `json:"page_id"`
}

func (s *Service) LogMiniappOpen(ctx context.Context, in MiniappOpen) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	e := s.event(in.Visit, domain.EventTypeApp, domain.EventNameMiniappOpen, domain.EventCategoryEngagement)
	e.Metadata = domain.Payload{
		"device":    in.Device,
		"page_id":   in.PageID,
		"cookie_id": in.CookieID,
	}
	e.CustomData = e.Metadata

	id, err := s.write(ctx, e, nil)
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type ContentView struct {
	Visit
	ContentType    string   `json:"content_type"`
	ContentID      string   `json:"content_id"`
	ContentTitle   *string  `json:"content_title,omitempty"`
	Section        *string  `json:"section,omitempty"`
	TimeSpent      *int64   `json:"time_spent,omitempty"`
	ScrollDepth    *int64   `json:"scroll_depth,omitempty"`
	CompletionRate *float64 `json:"completion_rate,omitempty"`
}

// LogContentView событие и строка content_views в одной транзакции
func (s *Service) LogContentView(ctx context.Context, in ContentView) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	if in.ContentType == "" || in.ContentID == "" {
		return notLogged, domain.NewValidationError("content_type", "content_type and content_id are required")
	}

	e := s.event(in.Visit, domain.EventTypeContent, domain.EventNameContentView, domain.EventCategoryEngagement)
	e.Section = in.Section
	e.TimeSpent = in.TimeSpent
	e.ScrollDepth = in.ScrollDepth
	e.CompletionRate = in.CompletionRate
	e.CustomData = domain.Payload{
		"content_type":  in.ContentType,
		"content_id":    in.ContentID,
		"content_title": in.ContentTitle,
		"cookie_id":     in.CookieID,
	}.Compact()

	fact := domain.ContentView{
		SessionID:      in.SessionID,
		TgUserID:       in.TgUserID,
		CookieID:       in.cookiePtr(),
		ContentType:    in.ContentType,
		ContentID:      in.ContentID,
		ContentTitle:   in.ContentTitle,
		Section:        in.Section,
		TimeSpent:      in.TimeSpent,
		ScrollDepth:    in.ScrollDepth,
		CompletionRate: in.CompletionRate,
		ViewedAt:       e.CreatedAt,
	}

	id, err := s.write(ctx, e, s.insertFact(fact))
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type AIInteraction struct {
	Visit
	MessagesCount    int64    `json:"messages_count"`
	Topics           []string `json:"topics,omitempty"`
	Duration         *int64   `json:"duration,omitempty"`
	ConversationType string   `json:"conversation_type"`
}

// LogAIInteraction диалоги из закрытого списка возвращают Logged=false без ошибки и без записи
func (s *Service) LogAIInteraction(ctx context.Context, in AIInteraction) (LogResult, error) {
	if IsExcludedConversation(in.ConversationType) {
		s.Log.Info("ai interaction skipped by policy", "conversation_type", in.ConversationType, "session_id", in.SessionID)
		return notLogged, nil
	}
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	conversationType := in.ConversationType
	if conversationType == "" {
		conversationType = "general"
	}

	e := s.event(in.Visit, domain.EventTypeAI, domain.EventNameAIInteraction, domain.EventCategoryEngagement)
	e.TimeSpent = in.Duration
	e.InteractionCount = ptr(in.MessagesCount)
	topics := in.Topics
	if topics == nil {
		topics = []string{}
	}
	e.CustomData = domain.Payload{
		"messages_count":    in.MessagesCount,
		"topics":            topics,
		"conversation_type": conversationType,
		"cookie_id":         in.CookieID,
	}

	fact := domain.AIInteraction{
		SessionID:           in.SessionID,
		TgUserID:            in.TgUserID,
		CookieID:            in.cookiePtr(),
		MessagesCount:       in.MessagesCount,
		Topics:              domain.Topics(topics),
		InteractionDuration: in.Duration,
		ConversationType:    conversationType,
		StartedAt:           e.CreatedAt,
	}
	if in.Duration != nil {
		fact.StartedAt = e.CreatedAt.Add(-time.Duration(*in.Duration) * time.Second)
		fact.EndedAt = ptr(e.CreatedAt)
	}

	id, err := s.write(ctx, e, s.insertFact(fact))
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type DiagnosticCompleted struct {
	Visit
	Results   map[string]any `json:"results"`
	StartTime *string        `json:"start_time,omitempty"`
	EndTime   *string        `json:"end_time,omitempty"`
	Progress  map[string]any `json:"progress,omitempty"`
}

// LogDiagnosticCompleted при известном tg_user_id в той же транзакции сохраняет результат и отмечает завершение у пользователя
func (s *Service) LogDiagnosticCompleted(ctx context.Context, in DiagnosticCompleted) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}

	completionRate := 100.0
	if rate, ok := in.Progress["completion_rate"].(float64); ok {
		completionRate = rate
	}

	e := s.event(in.Visit, domain.EventTypeDiagnostic, domain.EventNameDiagnosticCompleted, domain.EventCategoryConversion)
	e.CompletionRate = ptr(completionRate)
	e.CustomData = domain.Payload{
		"results":    in.Results,
		"start_time": in.StartTime,
		"end_time":   in.EndTime,
		"progress":   in.Progress,
		"cookie_id":  in.CookieID,
	}.Compact()

	var extra func(ctx context.Context, q persistence.Querier) error
	if in.TgUserID != nil {
		tgUserID := *in.TgUserID
		document := domain.DiagnosticsDocument{
			"results":    in.Results,
			"start_time": in.StartTime,
			"end_time":   in.EndTime,
			"progress":   in.Progress,
			"session_id": in.SessionID,
			"cookie_id":  in.CookieID,
		}
		extra = func(ctx context.Context, q persistence.Querier) error {
			result := &domain.DiagnosticsResult{
				TgUserID:    tgUserID,
				CookieID:    in.CookieID,
				Result:      document,
				CompletedAt: e.CreatedAt,
			}
			if err := s.Diagnostics.SaveTx(ctx, q, result); err != nil {
				return err
			}
			return s.Users.MarkDiagnosticsCompletedTx(ctx, q, tgUserID)
		}
	}

	id, err := s.write(ctx, e, extra)
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type GameAction struct {
	Visit
	GameType    string         `json:"game_type"`
	ActionType  string         `json:"action_type"`
	ActionData  domain.Payload `json:"action_data,omitempty"`
	Score       *int64         `json:"score,omitempty"`
	Achievement *string        `json:"achievement,omitempty"`
	Duration    *int64         `json:"duration,omitempty"`
}

func (s *Service) LogGameAction(ctx context.Context, in GameAction) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	if in.GameType == "" || in.ActionType == "" {
		return notLogged, domain.NewValidationError("game_type", "game_type and action_type are required")
	}

	e := s.event(in.Visit, domain.EventTypeGame, fmt.Sprintf("%s_%s", in.GameType, in.ActionType), domain.EventCategoryEngagement)
	e.TimeSpent = in.Duration
	e.CustomData = domain.Payload{
		"game_type":   in.GameType,
		"action_type": in.ActionType,
		"score":       in.Score,
		"achievement": in.Achievement,
		"cookie_id":   in.CookieID,
	}.Compact()
	if len(in.ActionData) > 0 {
		e.CustomData["action_data"] = map[string]any(in.ActionData)
	}

	fact := domain.GameAction{
		SessionID:   in.SessionID,
		TgUserID:    in.TgUserID,
		CookieID:    in.cookiePtr(),
		GameType:    in.GameType,
		ActionType:  in.ActionType,
		ActionData:  in.ActionData,
		Score:       in.Score,
		Achievement: in.Achievement,
		Duration:    in.Duration,
		CreatedAt:   e.CreatedAt,
	}

	id, err := s.write(ctx, e, s.insertFact(fact))
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type CTAClick struct {
	Visit
	CTAType      string  `json:"cta_type"`
	CTAText      *string `json:"cta_text,omitempty"`
	CTALocation  *string `json:"cta_location,omitempty"`
	PreviousStep *string `json:"previous_step,omitempty"`
	StepDuration *int64  `json:"step_duration,omitempty"`
}

func (s *Service) LogCTAClick(ctx context.Context, in CTAClick) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}
	if in.CTAType == "" {
		return notLogged, domain.NewValidationError("cta_type", "is required")
	}

	e := s.event(in.Visit, domain.EventTypeCTA, domain.EventNameCTAClick, domain.EventCategoryConversion)
	e.TimeSpent = in.StepDuration
	e.ElementType = ptr("button")
	e.CustomData = domain.Payload{
		"cta_type":      in.CTAType,
		"cta_text":      in.CTAText,
		"cta_location":  in.CTALocation,
		"previous_step": in.PreviousStep,
		"cookie_id":     in.CookieID,
	}.Compact()

	fact := domain.CTAClick{
		SessionID:    in.SessionID,
		TgUserID:     in.TgUserID,
		CookieID:     in.cookiePtr(),
		CTAType:      in.CTAType,
		CTAText:      in.CTAText,
		CTALocation:  in.CTALocation,
		PreviousStep: in.PreviousStep,
		StepDuration: in.StepDuration,
		CreatedAt:    e.CreatedAt,
	}

	id, err := s.write(ctx, e, s.insertFact(fact))
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

type PersonalPathView struct {
	Visit
	OpenTime   string `json:"open_time"`
	Duration   int64  `json:"duration"`
	Downloaded bool   `json:"downloaded"`
}

func (s *Service) LogPersonalPathView(ctx context.Context, in PersonalPathView) (LogResult, error) {
	if err := in.validate(); err != nil {
		return notLogged, err
	}

	e := s.event(in.Visit, domain.EventTypeContent, domain.EventNamePersonalPathView, domain.EventCategoryEngagement)
	e.TimeSpent = ptr(in.Duration)
	e.Metadata = domain.Payload{
		"open_time":  in.OpenTime,
		"duration":   in.Duration,
		"downloaded": in.Downloaded,
		"cookie_id":  in.CookieID,
	}
	e.CustomData = e.Metadata

	id, err := s.write(ctx, e, nil)
	if err != nil {
		return notLogged, err
	}
	return logged(id), nil
}

func (s *Service) insertFact(fact domain.Fact) func(ctx context.Context, q persistence.Querier) error {
	return func(ctx context.Context, q persistence.Querier) error {
		return s.Events.InsertFactTx(ctx, q, fact)
	}
}
