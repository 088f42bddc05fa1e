package eventRepo

import (
	"context"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore/sqlstoretest"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	sessionRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/session"
)

func openSession(t *testing.T, db *sqlstore.DB, cookie string, tgUserID *int64) int64 {
	t.Helper()
	sessions := sessionRepo.New(db, sqlstoretest.Logger())
	id, err := sessions.Open(context.Background(), cookie, tgUserID, domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return id
}

func insert(t *testing.T, repo *Repository, db *sqlstore.DB, e *domain.Event) int64 {
	t.Helper()
	id, err := repo.InsertTx(context.Background(), db, e)
	if err != nil {
		t.Fatalf("InsertTx: %v", err)
	}
	return id
}

func TestListBySession_InsertionOrderAndPayload(t *testing.T) {
	db := sqlstoretest.Open(t)
	repo := New(db, sqlstoretest.Logger()).(*Repository)
	sid := openSession(t, db, "c1", nil)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	spent := int64(42)
	first := insert(t, repo, db, &domain.Event{
		SessionID: sid, EventType: "content", EventName: "content_view", CreatedAt: at,
		TimeSpent: &spent, Metadata: domain.Payload{"content_id": "a1"},
	})
	second := insert(t, repo, db, &domain.Event{
		SessionID: sid, EventType: "cta", EventName: "cta_click", CreatedAt: at,
	})
	if first <= 0 || second <= first {
		t.Fatalf("ids = %d, %d", first, second)
	}

	events, err := repo.ListBySession(context.Background(), sid)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(events) != 2 || events[0].ID != first || events[1].ID != second {
		t.Fatalf("events = %+v", events)
	}
	if events[0].TimeSpent == nil || *events[0].TimeSpent != 42 || events[0].Metadata.String("content_id") != "a1" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Metadata != nil {
		t.Errorf("empty metadata read back as %v", events[1].Metadata)
	}

	count, err := repo.CountBySession(context.Background(), sid)
	if err != nil || count != 2 {
		t.Errorf("CountBySession = %d, %v", count, err)
	}
}

func TestListByUser_NewestFirstWithSession(t *testing.T) {
	db := sqlstoretest.Open(t)
	repo := New(db, sqlstoretest.Logger()).(*Repository)
	uid := int64(5)
	sid := openSession(t, db, "c5", &uid)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		insert(t, repo, db, &domain.Event{
			SessionID: sid, TgUserID: &uid, EventType: "app", EventName: "miniapp_open",
			CreatedAt: at.Add(time.Duration(i) * time.Minute),
		})
	}

	events, err := repo.ListByUser(context.Background(), uid, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if !events[0].CreatedAt.After(events[1].CreatedAt) {
		t.Errorf("not newest first: %v, %v", events[0].CreatedAt, events[1].CreatedAt)
	}
	if events[0].CookieID == nil || *events[0].CookieID != "c5" {
		t.Errorf("cookie_id = %v", events[0].CookieID)
	}
}

// битый JSON возможен только в текстовой колонке SQLite
func TestListBySession_MalformedPayloadKeptRaw(t *testing.T) {
	db := sqlstoretest.OpenSQLite(t)
	repo := New(db, sqlstoretest.Logger()).(*Repository)
	sid := openSession(t, db, "c2", nil)

	err := db.Exec(context.Background(),
		`INSERT INTO site_events (session_id, event_type, event_name, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		sid, "visit", "source_visit", "{not json", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	events, err := repo.ListBySession(context.Background(), sid)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d", len(events))
	}
	raw, ok := events[0].Metadata.Raw()
	if !ok || raw != "{not json" {
		t.Errorf("metadata = %v, want raw fallback", events[0].Metadata)
	}
}
