package sessionRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore/sqlstoretest"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

func newRepo(t *testing.T) (*Repository, *time.Time) {
	t.Helper()
	db := sqlstoretest.Open(t)
	now := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)
	repo := New(db, sqlstoretest.Logger()).(*Repository)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func TestOpen_AnonymousSessionDefaults(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	device := "mobile"
	id, err := repo.Open(ctx, "c1", nil, domain.SessionMetadata{DeviceType: &device, UTMParams: domain.Payload{"utm_source": "vk"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if id <= 0 {
		t.Fatalf("session id = %d, want positive", id)
	}

	session, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.TgUserID != nil {
		t.Errorf("tg_user_id = %v, want nil", *session.TgUserID)
	}
	if session.PageViews != 0 || session.EventsCount != 0 {
		t.Errorf("counters = %d/%d, want 0/0", session.PageViews, session.EventsCount)
	}
	if !session.IsActive() {
		t.Error("new session is not active")
	}
	if session.DeviceType == nil || *session.DeviceType != "mobile" {
		t.Errorf("device_type = %v, want mobile", session.DeviceType)
	}
	if session.UTMParams.String("utm_source") != "vk" {
		t.Errorf("utm_params = %v, want utm_source=vk", session.UTMParams)
	}
}

func TestClose_Idempotent(t *testing.T) {
	repo, now := newRepo(t)
	ctx := context.Background()

	id, err := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	*now = now.Add(90 * time.Second)
	closed, err := repo.Close(ctx, id)
	if err != nil || !closed {
		t.Fatalf("first Close = %v, %v; want true, nil", closed, err)
	}
	closed, err = repo.Close(ctx, id)
	if err != nil || closed {
		t.Fatalf("second Close = %v, %v; want false, nil", closed, err)
	}

	session, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.SessionEnd == nil || !session.SessionEnd.Equal(*now) {
		t.Errorf("session_end = %v, want %v", session.SessionEnd, *now)
	}
	if session.SessionDuration == nil || *session.SessionDuration != 90 {
		t.Errorf("session_duration = %v, want 90", session.SessionDuration)
	}

	if closed, err := repo.Close(ctx, 9999); err != nil || closed {
		t.Errorf("Close missing = %v, %v; want false, nil", closed, err)
	}
}

func TestPatch_AllowListOnly(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	id, err := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	updated, err := repo.Patch(ctx, id, domain.SessionPatch{
		"geo_city":     "Moscow",
		"page_views":   float64(3),
		"events_count": float64(100),
		"cookie_id":    "hijack",
		"unknown":      "x",
	})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !updated {
		t.Fatal("Patch reported no update")
	}

	session, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.GeoCity == nil || *session.GeoCity != "Moscow" {
		t.Errorf("geo_city = %v, want Moscow", session.GeoCity)
	}
	if session.PageViews != 3 {
		t.Errorf("page_views = %d, want 3", session.PageViews)
	}
	if session.EventsCount != 0 {
		t.Errorf("events_count = %d, patch must not touch it", session.EventsCount)
	}
	if session.CookieID != "c1" {
		t.Errorf("cookie_id = %q, patch must not touch it", session.CookieID)
	}

	updated, err = repo.Patch(ctx, id, domain.SessionPatch{"unknown": 1})
	if err != nil || updated {
		t.Errorf("Patch with only unknown fields = %v, %v; want false, nil", updated, err)
	}

	if _, err := repo.Patch(ctx, id, domain.SessionPatch{"page_views": 1.5}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("fractional page_views err = %v, want ErrValidation", err)
	}
}

func TestListActive_MostRecentFirst(t *testing.T) {
	repo, now := newRepo(t)
	ctx := context.Background()

	first, _ := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	*now = now.Add(time.Minute)
	second, _ := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	*now = now.Add(time.Minute)
	third, _ := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	if _, err := repo.Open(ctx, "other", nil, domain.SessionMetadata{}); err != nil {
		t.Fatalf("Open other: %v", err)
	}

	if _, err := repo.Close(ctx, second); err != nil {
		t.Fatalf("Close: %v", err)
	}

	active, err := repo.ListActive(ctx, "c1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active sessions = %d, want 2", len(active))
	}
	if active[0].ID != third || active[1].ID != first {
		t.Errorf("order = [%d %d], want [%d %d]", active[0].ID, active[1].ID, third, first)
	}
}

func TestIncrementEventsTx(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	id, err := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.IncrementEventsTx(ctx, repo.db, id); err != nil {
			t.Fatalf("IncrementEventsTx: %v", err)
		}
	}
	session, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.EventsCount != 3 {
		t.Errorf("events_count = %d, want 3", session.EventsCount)
	}

	if err := repo.IncrementEventsTx(ctx, repo.db, id+100); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("missing session err = %v, want ErrSessionNotFound", err)
	}
}

func TestAttachUser(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	anonymous, _ := repo.Open(ctx, "c1", nil, domain.SessionMetadata{})
	owner := int64(77)
	if _, err := repo.Open(ctx, "c1", &owner, domain.SessionMetadata{}); err != nil {
		t.Fatalf("Open owned: %v", err)
	}

	attached, err := repo.AttachUser(ctx, "c1", 42)
	if err != nil {
		t.Fatalf("AttachUser: %v", err)
	}
	if attached != 1 {
		t.Errorf("attached = %d, want 1", attached)
	}

	session, err := repo.GetByID(ctx, anonymous)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if session.TgUserID == nil || *session.TgUserID != 42 {
		t.Errorf("tg_user_id = %v, want 42", session.TgUserID)
	}
}
