package tracking

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore/sqlstoretest"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	diagnosticsRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/diagnostics"
	eventRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/event"
	identityRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/identity"
	sessionRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/session"
	userRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/user"
)

type sentMessage struct {
	key   string
	value []byte
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (p *fakeProducer) Send(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sentMessage{key: key, value: value})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func newService(t *testing.T) (*Service, *sqlstore.DB, *fakeProducer) {
	t.Helper()
	db := sqlstoretest.Open(t)
	log := sqlstoretest.Logger()

	users := userRepo.New(db, log)
	producer := &fakeProducer{}
	svc := New(
		db,
		users,
		sessionRepo.New(db, log),
		eventRepo.New(db, log),
		identityRepo.New(db, users, log),
		diagnosticsRepo.New(db, users, log),
		producer,
		log,
	)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, db, producer
}

func count(t *testing.T, db *sqlstore.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Get(context.Background(), &n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func openSession(t *testing.T, svc *Service, cookieID string, tgUserID *int64) int64 {
	t.Helper()
	id, err := svc.OpenSession(context.Background(), cookieID, tgUserID, domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	return id
}

func TestLogContentView_WritesEventAndFact(t *testing.T) {
	svc, db, producer := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	spent := int64(42)
	res, err := svc.LogContentView(ctx, ContentView{
		Visit:       Visit{SessionID: sessionID, CookieID: "c1"},
		ContentType: "article",
		ContentID:   "a-1",
		TimeSpent:   &spent,
	})
	if err != nil {
		t.Fatalf("LogContentView: %v", err)
	}
	if !res.Logged || res.ID <= 0 {
		t.Fatalf("result = %+v, want logged with id", res)
	}

	events := svc.SessionEvents(ctx, sessionID)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if e.EventName != domain.EventNameContentView || e.EventType != domain.EventTypeContent {
		t.Errorf("event = %s/%s", e.EventType, e.EventName)
	}
	if e.TimeSpent == nil || *e.TimeSpent != 42 {
		t.Errorf("time_spent = %v, want 42", e.TimeSpent)
	}
	if e.CustomData.String("content_type") != "article" || e.CustomData.String("cookie_id") != "c1" {
		t.Errorf("custom_data = %v", e.CustomData)
	}

	if n := count(t, db, "SELECT COUNT(*) FROM content_views WHERE session_id = ? AND time_spent = ?", sessionID, 42); n != 1 {
		t.Errorf("content_views rows = %d, want 1", n)
	}

	session, err := svc.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.EventsCount != 1 {
		t.Errorf("events_count = %d, want 1", session.EventsCount)
	}

	if len(producer.sent) != 1 {
		t.Fatalf("published = %d, want 1", len(producer.sent))
	}
	if want := strconv.FormatInt(sessionID, 10); producer.sent[0].key != want {
		t.Errorf("message key = %q, want %q", producer.sent[0].key, want)
	}
}

func TestLogContentView_FactFailureRollsBackEvent(t *testing.T) {
	svc, db, producer := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	if err := db.Exec(ctx, "DROP TABLE content_views"); err != nil {
		t.Fatalf("drop content_views: %v", err)
	}

	_, err := svc.LogContentView(ctx, ContentView{
		Visit:       Visit{SessionID: sessionID, CookieID: "c1"},
		ContentType: "article",
		ContentID:   "a-1",
	})
	if err == nil {
		t.Fatal("expected error when content_views is missing")
	}

	if n := count(t, db, "SELECT COUNT(*) FROM site_events WHERE session_id = ?", sessionID); n != 0 {
		t.Errorf("site_events rows = %d, want 0", n)
	}
	session, err := svc.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.EventsCount != 0 {
		t.Errorf("events_count = %d, want 0", session.EventsCount)
	}
	if len(producer.sent) != 0 {
		t.Errorf("published %d events for rolled back write", len(producer.sent))
	}
}

func TestLogEvent_CounterMatchesEvents(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	for i := 0; i < 5; i++ {
		if _, err := svc.LogEvent(ctx, EventInput{SessionID: sessionID, EventType: "click", EventName: "button"}); err != nil {
			t.Fatalf("LogEvent #%d: %v", i, err)
		}
	}

	session, err := svc.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	n, err := svc.Events.CountBySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("CountBySession: %v", err)
	}
	if session.EventsCount != 5 || n != 5 {
		t.Errorf("events_count = %d, rows = %d; want 5/5", session.EventsCount, n)
	}
}

func TestLogEvent_UnknownSessionLeavesNoEvent(t *testing.T) {
	svc, db, producer := newService(t)
	ctx := context.Background()

	_, err := svc.LogEvent(ctx, EventInput{SessionID: 9999, EventType: "click", EventName: "button"})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM site_events"); n != 0 {
		t.Errorf("site_events rows = %d, want 0", n)
	}
	if len(producer.sent) != 0 {
		t.Errorf("published %d events for failed write", len(producer.sent))
	}
}

func TestLogEvent_Validation(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.LogEvent(context.Background(), EventInput{SessionID: 1, EventName: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLogAIInteraction_ExcludedTypesNotStored(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	for _, conversationType := range []string{"expert", "deal_closure", " Expert "} {
		res, err := svc.LogAIInteraction(ctx, AIInteraction{
			Visit:            Visit{SessionID: sessionID, CookieID: "c1"},
			MessagesCount:    4,
			ConversationType: conversationType,
		})
		if err != nil {
			t.Fatalf("LogAIInteraction(%q): %v", conversationType, err)
		}
		if res.Logged || res.ID != 0 {
			t.Errorf("LogAIInteraction(%q) = %+v, want not logged", conversationType, res)
		}
	}

	if n := count(t, db, "SELECT COUNT(*) FROM site_events"); n != 0 {
		t.Errorf("site_events rows = %d, want 0", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM ai_interactions"); n != 0 {
		t.Errorf("ai_interactions rows = %d, want 0", n)
	}
}

func TestLogAIInteraction_General(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	duration := int64(120)
	res, err := svc.LogAIInteraction(ctx, AIInteraction{
		Visit:         Visit{SessionID: sessionID, CookieID: "c1"},
		MessagesCount: 6,
		Topics:        []string{"sleep", "focus"},
		Duration:      &duration,
	})
	if err != nil || !res.Logged {
		t.Fatalf("LogAIInteraction = %+v, %v", res, err)
	}

	if n := count(t, db, "SELECT COUNT(*) FROM ai_interactions WHERE conversation_type = ? AND messages_count = ?", "general", 6); n != 1 {
		t.Errorf("ai_interactions rows = %d, want 1", n)
	}
	e := svc.SessionEvents(ctx, sessionID)[0]
	if e.InteractionCount == nil || *e.InteractionCount != 6 {
		t.Errorf("interaction_count = %v, want 6", e.InteractionCount)
	}
	if e.TimeSpent == nil || *e.TimeSpent != 120 {
		t.Errorf("time_spent = %v, want 120", e.TimeSpent)
	}
}

func TestLogDiagnosticCompleted_SavesAndReplacesResult(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	tgUserID := int64(555)
	sessionID := openSession(t, svc, "c1", &tgUserID)
	visit := Visit{SessionID: sessionID, CookieID: "c1", TgUserID: &tgUserID}

	if _, err := svc.LogDiagnosticCompleted(ctx, DiagnosticCompleted{
		Visit:   visit,
		Results: map[string]any{"score": 3.0},
	}); err != nil {
		t.Fatalf("first LogDiagnosticCompleted: %v", err)
	}
	if _, err := svc.LogDiagnosticCompleted(ctx, DiagnosticCompleted{
		Visit:    visit,
		Results:  map[string]any{"score": 7.0},
		Progress: map[string]any{"completion_rate": 80.0},
	}); err != nil {
		t.Fatalf("second LogDiagnosticCompleted: %v", err)
	}

	if n := count(t, db, "SELECT COUNT(*) FROM diagnostics_results WHERE tg_user_id = ?", tgUserID); n != 1 {
		t.Fatalf("diagnostics rows = %d, want 1", n)
	}
	result := svc.LoadDiagnostics(ctx, tgUserID)
	if result == nil {
		t.Fatal("LoadDiagnostics = nil")
	}
	results, _ := result.Result["results"].(map[string]any)
	if results["score"] != 7.0 {
		t.Errorf("stored results = %v, want score 7", result.Result["results"])
	}
	if result.Result["session_id"] != float64(sessionID) {
		t.Errorf("session_id = %v, want %d", result.Result["session_id"], sessionID)
	}

	user, err := svc.Users.GetByID(ctx, tgUserID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.DiagnosticsCompletedAt == nil {
		t.Error("diagnostics_completed_at not set")
	}

	events := svc.SessionEvents(ctx, sessionID)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].CompletionRate == nil || *events[0].CompletionRate != 100 {
		t.Errorf("default completion_rate = %v, want 100", events[0].CompletionRate)
	}
	if events[1].CompletionRate == nil || *events[1].CompletionRate != 80 {
		t.Errorf("completion_rate = %v, want 80", events[1].CompletionRate)
	}
}

func TestLogDiagnosticCompleted_AnonymousWritesEventOnly(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	res, err := svc.LogDiagnosticCompleted(ctx, DiagnosticCompleted{
		Visit:   Visit{SessionID: sessionID, CookieID: "c1"},
		Results: map[string]any{"score": 1.0},
	})
	if err != nil || !res.Logged {
		t.Fatalf("LogDiagnosticCompleted = %+v, %v", res, err)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM diagnostics_results"); n != 0 {
		t.Errorf("diagnostics rows = %d, want 0", n)
	}
}

func TestLogGameAndCTA(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)
	visit := Visit{SessionID: sessionID, CookieID: "c1"}

	score := int64(10)
	if _, err := svc.LogGameAction(ctx, GameAction{Visit: visit, GameType: "quiz", ActionType: "finish", Score: &score}); err != nil {
		t.Fatalf("LogGameAction: %v", err)
	}
	text := "Пройти диагностику"
	if _, err := svc.LogCTAClick(ctx, CTAClick{Visit: visit, CTAType: "diagnostics", CTAText: &text}); err != nil {
		t.Fatalf("LogCTAClick: %v", err)
	}

	events := svc.SessionEvents(ctx, sessionID)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].EventName != "quiz_finish" {
		t.Errorf("game event name = %q, want quiz_finish", events[0].EventName)
	}
	if events[1].ElementType == nil || *events[1].ElementType != "button" {
		t.Errorf("cta element_type = %v, want button", events[1].ElementType)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM game_actions WHERE score = ?", 10); n != 1 {
		t.Errorf("game_actions rows = %d, want 1", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM cta_clicks WHERE cta_type = ?", "diagnostics"); n != 1 {
		t.Errorf("cta_clicks rows = %d, want 1", n)
	}
}

func TestLogEvent_PublishFailureDoesNotFailWrite(t *testing.T) {
	svc, _, producer := newService(t)
	producer.err = errors.New("broker down")
	sessionID := openSession(t, svc, "c1", nil)

	id, err := svc.LogEvent(context.Background(), EventInput{SessionID: sessionID, EventType: "click", EventName: "x"})
	if err != nil || id <= 0 {
		t.Fatalf("LogEvent = %d, %v; want id, nil", id, err)
	}
}

func TestLinkIdentity_AttachesAnonymousSessions(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sessionID := openSession(t, svc, "c1", nil)

	if err := svc.LinkIdentity(ctx, 777, "c1", domain.IdentitySourceMiniapp, nil); err != nil {
		t.Fatalf("LinkIdentity: %v", err)
	}

	session, err := svc.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.TgUserID == nil || *session.TgUserID != 777 {
		t.Errorf("session tg_user_id = %v, want 777", session.TgUserID)
	}
	linked := svc.ResolveByCookie(ctx, "c1")
	if linked == nil || linked.UserID != 777 {
		t.Fatalf("ResolveByCookie = %+v, want user 777", linked)
	}
	if svc.ResolveByCookie(ctx, "unknown") != nil {
		t.Error("ResolveByCookie(unknown) != nil")
	}
}

func TestLinkIdentity_RejectsUnknownSource(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.LinkIdentity(context.Background(), 1, "c1", domain.IdentitySource("email"), nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
