package identityController

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

type fakeIdentities struct {
	links       map[string]int64
	diagnostics map[int64]domain.DiagnosticsDocument
}

func (f *fakeIdentities) LinkIdentity(_ context.Context, tgUserID int64, cookieID string, source domain.IdentitySource, _ *string) error {
	if tgUserID <= 0 {
		return domain.NewValidationError("tg_user_id", "is required")
	}
	if source != "" && !source.IsValid() {
		return domain.NewValidationError("source", "must be one of telegram, site, miniapp")
	}
	f.links[cookieID] = tgUserID
	return nil
}

func (f *fakeIdentities) ResolveByCookie(_ context.Context, cookieID string) *domain.LinkedUser {
	id, ok := f.links[cookieID]
	if !ok {
		return nil
	}
	return &domain.LinkedUser{User: domain.User{UserID: id}, CookieID: &cookieID}
}

func (f *fakeIdentities) ResolveByTgUser(_ context.Context, tgUserID int64) *domain.LinkedUser {
	for cookieID, id := range f.links {
		if id == tgUserID {
			return f.ResolveByCookie(context.Background(), cookieID)
		}
	}
	return nil
}

func (f *fakeIdentities) ListIdentities(_ context.Context, tgUserID int64) []domain.IdentityLink {
	links := []domain.IdentityLink{}
	for cookieID, id := range f.links {
		if id == tgUserID {
			links = append(links, domain.IdentityLink{TgUserID: id, CookieID: cookieID, Source: domain.IdentitySourceSite})
		}
	}
	return links
}

func (f *fakeIdentities) SaveDiagnostics(_ context.Context, tgUserID int64, _ string, document domain.DiagnosticsDocument) error {
	f.diagnostics[tgUserID] = document
	return nil
}

func (f *fakeIdentities) LoadDiagnostics(_ context.Context, tgUserID int64) *domain.DiagnosticsResult {
	document, ok := f.diagnostics[tgUserID]
	if !ok {
		return nil
	}
	return &domain.DiagnosticsResult{TgUserID: tgUserID, Result: document}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	fake := &fakeIdentities{links: map[string]int64{}, diagnostics: map[int64]domain.DiagnosticsDocument{}}
	New(fake, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestLinkAndResolve(t *testing.T) {
	router := newRouter()

	if code, body := do(router, http.MethodGet, "/api/user/by-cookie/abc", ""); code != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("unlinked cookie = %d %v, want 404 with error", code, body)
	}

	code, body := do(router, http.MethodPost, "/api/identity/link", `{"tg_user_id":42,"cookie_id":"abc","source":"miniapp"}`)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("link = %d %v", code, body)
	}

	code, body = do(router, http.MethodGet, "/api/user/by-cookie/abc", "")
	if code != http.StatusOK || body["user_id"] != float64(42) {
		t.Errorf("by-cookie = %d %v", code, body)
	}
	code, body = do(router, http.MethodGet, "/api/user/by-telegram/42", "")
	if code != http.StatusOK || body["cookie_id"] != "abc" {
		t.Errorf("by-telegram = %d %v", code, body)
	}

	code, body = do(router, http.MethodGet, "/api/user/by-telegram/42/identities", "")
	identities, _ := body["identities"].([]any)
	if code != http.StatusOK || len(identities) != 1 {
		t.Errorf("identities = %d %v", code, body)
	}
}

func TestLink_Validation(t *testing.T) {
	router := newRouter()

	for _, payload := range []string{
		`{"cookie_id":"abc"}`,
		`{"tg_user_id":1,"cookie_id":"abc","source":"email"}`,
		`not json`,
	} {
		if code, _ := do(router, http.MethodPost, "/api/identity/link", payload); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", payload, code)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	router := newRouter()

	if code, _ := do(router, http.MethodGet, "/api/diagnostics/7", ""); code != http.StatusNotFound {
		t.Errorf("missing diagnostics status = %d, want 404", code)
	}
	if code, _ := do(router, http.MethodPost, "/api/diagnostics", `{"tg_user_id":7}`); code != http.StatusBadRequest {
		t.Errorf("empty result status = %d, want 400", code)
	}

	code, _ := do(router, http.MethodPost, "/api/diagnostics", `{"tg_user_id":7,"cookie_id":"c","result":{"score":3}}`)
	if code != http.StatusOK {
		t.Fatalf("save status = %d", code)
	}
	code, body := do(router, http.MethodGet, "/api/diagnostics/7", "")
	result, _ := body["result"].(map[string]any)
	if code != http.StatusOK || result["score"] != float64(3) {
		t.Errorf("load = %d %v", code, body)
	}
}
