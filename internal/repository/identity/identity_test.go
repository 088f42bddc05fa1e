package identityRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore/sqlstoretest"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	userRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/user"
)

func newRepo(t *testing.T) (*Repository, *time.Time) {
	t.Helper()
	db := sqlstoretest.Open(t)
	log := sqlstoretest.Logger()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	repo := New(db, userRepo.New(db, log), log).(*Repository)
	repo.now = func() time.Time { return now }
	return repo, &now
}

func TestLink_TwiceKeepsOneRowAndRefreshesTimestamp(t *testing.T) {
	repo, now := newRepo(t)
	ctx := context.Background()

	first := *now
	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 42, CookieID: "abc", Source: domain.IdentitySourceSite}); err != nil {
		t.Fatalf("first link: %v", err)
	}

	*now = first.Add(time.Hour)
	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 42, CookieID: "abc", Source: domain.IdentitySourceMiniapp}); err != nil {
		t.Fatalf("second link: %v", err)
	}

	links, err := repo.ListByTgUser(ctx, 42)
	if err != nil {
		t.Fatalf("ListByTgUser: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1", len(links))
	}
	if !links[0].LinkedAt.Equal(*now) {
		t.Errorf("linked_at = %v, want refreshed %v", links[0].LinkedAt, *now)
	}
	if links[0].Source != domain.IdentitySourceSite {
		t.Errorf("source = %q, want original %q", links[0].Source, domain.IdentitySourceSite)
	}
}

func TestResolveByCookie_LatestLinkWins(t *testing.T) {
	repo, now := newRepo(t)
	ctx := context.Background()

	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 1, CookieID: "shared", Source: domain.IdentitySourceSite}); err != nil {
		t.Fatalf("link 1: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 2, CookieID: "shared", Source: domain.IdentitySourceTelegram}); err != nil {
		t.Fatalf("link 2: %v", err)
	}

	user, err := repo.ResolveByCookie(ctx, "shared")
	if err != nil {
		t.Fatalf("ResolveByCookie: %v", err)
	}
	if user.UserID != 2 {
		t.Errorf("resolved user = %d, want 2", user.UserID)
	}
	if user.CookieID == nil || *user.CookieID != "shared" {
		t.Errorf("cookie_id = %v, want shared", user.CookieID)
	}

	if _, err := repo.ResolveByCookie(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown cookie err = %v, want ErrNotFound", err)
	}
}

func TestResolveByTgUser_MultiDeviceAndNoLink(t *testing.T) {
	repo, now := newRepo(t)
	ctx := context.Background()

	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 5, CookieID: "phone", Source: domain.IdentitySourceMiniapp}); err != nil {
		t.Fatalf("link phone: %v", err)
	}
	*now = now.Add(time.Minute)
	if err := repo.Link(ctx, &domain.IdentityLink{TgUserID: 5, CookieID: "laptop", Source: domain.IdentitySourceSite}); err != nil {
		t.Fatalf("link laptop: %v", err)
	}

	user, err := repo.ResolveByTgUser(ctx, 5)
	if err != nil {
		t.Fatalf("ResolveByTgUser: %v", err)
	}
	if user.CookieID == nil || *user.CookieID != "laptop" {
		t.Errorf("latest cookie = %v, want laptop", user.CookieID)
	}

	links, err := repo.ListByTgUser(ctx, 5)
	if err != nil {
		t.Fatalf("ListByTgUser: %v", err)
	}
	if len(links) != 2 || links[0].CookieID != "laptop" {
		t.Errorf("links = %+v, want laptop first of two", links)
	}

	if err := repo.users.EnsureTx(ctx, repo.db, 6); err != nil {
		t.Fatalf("EnsureTx: %v", err)
	}
	lonely, err := repo.ResolveByTgUser(ctx, 6)
	if err != nil {
		t.Fatalf("ResolveByTgUser without links: %v", err)
	}
	if lonely.CookieID != nil || lonely.LinkedAt != nil {
		t.Errorf("identity fields = %v/%v, want nil", lonely.CookieID, lonely.LinkedAt)
	}
}
