package analyticsController

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/gin-gonic/gin"
)

type fakeAnalytics struct {
	Analytics
	funnelRange domain.TimeRange
}

func (f *fakeAnalytics) Funnel(_ context.Context, tr domain.TimeRange) (*domain.Funnel, error) {
	if tr.From != nil && tr.To != nil && tr.From.After(*tr.To) {
		return nil, domain.NewValidationError("from", "must not be after to")
	}
	f.funnelRange = tr
	return &domain.Funnel{Visitors: 3, From: tr.From, To: tr.To}, nil
}

func (f *fakeAnalytics) TableStats(context.Context) (*domain.TableStats, error) {
	return &domain.TableStats{
		Tables:       map[string]int64{"site_events": 2},
		RecentEvents: []domain.Row{{{Name: "id", Value: 2}, {Name: "event_type", Value: "page_view"}}},
	}, nil
}

type fakeSegmenter struct {
	Segmenter
	criteria map[string]any
}

func (f *fakeSegmenter) Segment(_ context.Context, _ int64) *domain.Segmentation {
	return &domain.Segmentation{Segment: domain.SegmentEngaged, EngagementLevel: domain.EngagementMedium}
}

func (f *fakeSegmenter) FindUsers(_ context.Context, criteria map[string]any) []int64 {
	f.criteria = criteria
	return []int64{1, 5}
}

func (f *fakeSegmenter) Insights(_ context.Context, segment domain.Segment) (*domain.SegmentInsights, error) {
	if !segment.IsValid() {
		return nil, domain.NewValidationError("segment", "unknown")
	}
	return &domain.SegmentInsights{Segment: segment, UsersCount: 2}, nil
}

func newRouter() (*gin.Engine, *fakeAnalytics, *fakeSegmenter) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	a, s := &fakeAnalytics{}, &fakeSegmenter{}
	New(a, s, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(router)
	return router, a, s
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

func TestFunnel_ParsesRange(t *testing.T) {
	router, analytics, _ := newRouter()

	code, body := do(router, http.MethodGet, "/api/analytics/funnel?from=2026-01-01&to=2026-02-01T10:00:00Z", "")
	if code != http.StatusOK || body["visitors"] != float64(3) {
		t.Fatalf("funnel = %d %v", code, body)
	}
	wantFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if analytics.funnelRange.From == nil || !analytics.funnelRange.From.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", analytics.funnelRange.From, wantFrom)
	}
	if analytics.funnelRange.To == nil || !analytics.funnelRange.To.Equal(wantTo) {
		t.Errorf("to = %v, want %v", analytics.funnelRange.To, wantTo)
	}

	code, _ = do(router, http.MethodGet, "/api/analytics/funnel", "")
	if code != http.StatusOK || analytics.funnelRange.From != nil || analytics.funnelRange.To != nil {
		t.Errorf("open range = %d %+v", code, analytics.funnelRange)
	}
}

func TestFunnel_BadRange(t *testing.T) {
	router, _, _ := newRouter()

	if code, _ := do(router, http.MethodGet, "/api/analytics/funnel?from=yesterday", ""); code != http.StatusBadRequest {
		t.Errorf("unparsable from status = %d", code)
	}
	if code, _ := do(router, http.MethodGet, "/api/analytics/funnel?from=2026-03-01&to=2026-01-01", ""); code != http.StatusBadRequest {
		t.Errorf("inverted range status = %d", code)
	}
}

func TestSegmentRoutes(t *testing.T) {
	router, _, segmenter := newRouter()

	code, body := do(router, http.MethodGet, "/api/analytics/segment/9", "")
	if code != http.StatusOK || body["segment"] != "engaged" {
		t.Errorf("segment = %d %v", code, body)
	}

	code, body = do(router, http.MethodPost, "/api/analytics/segments/users", `{"segment":"engaged"}`)
	if code != http.StatusOK || body["count"] != float64(2) {
		t.Errorf("find users = %d %v", code, body)
	}
	if segmenter.criteria["segment"] != "engaged" {
		t.Errorf("criteria = %v", segmenter.criteria)
	}

	if code, _ := do(router, http.MethodGet, "/api/analytics/segments/vip/insights", ""); code != http.StatusBadRequest {
		t.Errorf("unknown segment status = %d", code)
	}
	code, body = do(router, http.MethodGet, "/api/analytics/segments/loyal/insights", "")
	if code != http.StatusOK || body["users_count"] != float64(2) {
		t.Errorf("insights = %d %v", code, body)
	}
}

func TestTableStats_RowsKeepColumnOrder(t *testing.T) {
	router, _, _ := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/test-db", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var out struct {
		Tables       map[string]int64  `json:"tables"`
		RecentEvents []json.RawMessage `json:"recent_events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Tables["site_events"] != 2 || len(out.RecentEvents) != 1 {
		t.Fatalf("body = %s", rec.Body)
	}
	if string(out.RecentEvents[0]) != `{"id":2,"event_type":"page_view"}` {
		t.Errorf("row = %s, want id first", out.RecentEvents[0])
	}
}
