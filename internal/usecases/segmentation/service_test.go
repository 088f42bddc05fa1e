package segmentation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

type fakeUsers struct {
	repository.IUserRepo
	ids []int64
}

func (f *fakeUsers) ListIDs(context.Context) ([]int64, error) { return f.ids, nil }

// fakeAnalytics агрегаты по пользователям, заданные напрямую
type fakeAnalytics struct {
	repository.IAnalyticsRepo
	users  map[int64]domain.UserAnalytics
	active []int64
	err    error
}

func (f *fakeAnalytics) UserAnalytics(_ context.Context, id int64) (*domain.UserAnalytics, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := f.users[id]
	a.TgUserID = id
	return &a, nil
}

func (f *fakeAnalytics) ContentTypeCounts(context.Context, int64) ([]domain.CountedValue, error) {
	return []domain.CountedValue{{Value: "section", Count: 2}}, nil
}

func (f *fakeAnalytics) ConversationTypeCounts(context.Context, int64) ([]domain.CountedValue, error) {
	return nil, errors.New("table missing")
}

func (f *fakeAnalytics) RecentSourceVisits(context.Context, int64, int) ([]domain.Payload, error) {
	return []domain.Payload{{"source": "telegram"}}, nil
}

func (f *fakeAnalytics) EventTimes(context.Context, int64) ([]time.Time, error) {
	return nil, nil
}

func (f *fakeAnalytics) SessionStarts(context.Context, int64) ([]time.Time, error) {
	return nil, nil
}

func (f *fakeAnalytics) ActiveUsers(context.Context, time.Time) ([]int64, error) {
	return f.active, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent   []sentMessage
	failTo map[int64]bool
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, _ *domain.InlineKeyboardMarkup) error {
	if m.failTo[chatID] {
		return errors.New("blocked by user")
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func newTestService(analytics *fakeAnalytics, ids []int64, messenger *fakeMessenger) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(&fakeUsers{ids: ids}, analytics, nil, Config{MiniAppURL: "https://app.example"}, log)
	if messenger != nil {
		svc.Messenger = messenger
	}
	return svc
}

func population() *fakeAnalytics {
	return &fakeAnalytics{users: map[int64]domain.UserAnalytics{
		1: {},
		2: {TotalSessions: 1, TotalEvents: 2},
		3: {TotalSessions: 4, TotalEvents: 20},
		4: {TotalSessions: 1, TotalEvents: 3, DiagnosticsCompleted: true},
		5: {TotalSessions: 12, TotalEvents: 60, DiagnosticsCompleted: true},
		6: {TotalSessions: 3, TotalEvents: 16, DiagnosticsCompleted: true},
	}}
}

func TestCompute_TagsSurvivePartialFailure(t *testing.T) {
	svc := newTestService(population(), nil, nil)

	seg, err := svc.Compute(context.Background(), 5)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if seg.Segment != domain.SegmentLoyal || seg.EngagementLevel != domain.EngagementHigh || seg.ConversionPotential != domain.ConversionConverted {
		t.Errorf("segmentation = %s/%s/%s", seg.Segment, seg.EngagementLevel, seg.ConversionPotential)
	}
	if len(seg.ContentPreference) != 1 || seg.ContentPreference[0] != "likes_section" {
		t.Errorf("content_preference = %v, want [likes_section]", seg.ContentPreference)
	}
	if len(seg.BehaviorPatterns) != 1 || seg.BehaviorPatterns[0] != "source_telegram" {
		t.Errorf("behavior_patterns = %v, want [source_telegram]", seg.BehaviorPatterns)
	}
}

func TestSegment_StorageFailureIsNeutral(t *testing.T) {
	analytics := population()
	analytics.err = errors.New("connection refused")
	svc := newTestService(analytics, nil, nil)

	seg := svc.Segment(context.Background(), 1)
	if seg.Segment != domain.SegmentNewcomer || seg.EngagementLevel != domain.EngagementLow {
		t.Errorf("segment = %+v, want neutral newcomer", seg)
	}
}

func TestSegment_RecomputedOnEveryRequest(t *testing.T) {
	analytics := population()
	svc := newTestService(analytics, nil, nil)
	ctx := context.Background()

	if seg := svc.Segment(ctx, 7); seg.Segment != domain.SegmentNewcomer {
		t.Fatalf("segment = %s, want newcomer", seg.Segment)
	}

	analytics.users[7] = domain.UserAnalytics{TotalSessions: 12, TotalEvents: 60, DiagnosticsCompleted: true}
	seg := svc.Segment(ctx, 7)
	if seg.Segment != domain.SegmentLoyal || seg.EngagementLevel != domain.EngagementHigh {
		t.Errorf("segment = %s/%s, want loyal/high after new activity", seg.Segment, seg.EngagementLevel)
	}
}

func TestFindUsers(t *testing.T) {
	svc := newTestService(population(), []int64{1, 2, 3, 4, 5, 6}, nil)
	ctx := context.Background()

	got := svc.FindUsers(ctx, map[string]any{"segment": "newcomer", "diagnostics_completed": false})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("newcomers = %v, want [1 2]", got)
	}
	got = svc.FindUsers(ctx, map[string]any{"segment": "engaged"})
	if len(got) != 2 || got[0] != 3 || got[1] != 6 {
		t.Errorf("engaged = %v, want [3 6]", got)
	}
}

func TestInsights(t *testing.T) {
	svc := newTestService(population(), []int64{1, 2, 3, 4, 5, 6}, nil)

	insights, err := svc.Insights(context.Background(), domain.SegmentEngaged)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if insights.UsersCount != 2 {
		t.Fatalf("users_count = %d, want 2", insights.UsersCount)
	}
	if insights.AvgSessions != 3.5 || insights.AvgEvents != 18 || insights.ConversionRate != 0.5 {
		t.Errorf("averages = %v/%v/%v, want 3.5/18/0.5", insights.AvgSessions, insights.AvgEvents, insights.ConversionRate)
	}
	if len(insights.TopSources) != 1 || insights.TopSources[0] != (domain.CountedValue{Value: "source_telegram", Count: 2}) {
		t.Errorf("top_sources = %+v", insights.TopSources)
	}
	if len(insights.TopContentTypes) != 1 || insights.TopContentTypes[0].Value != "likes_section" {
		t.Errorf("top_content_types = %+v", insights.TopContentTypes)
	}

	if _, err := svc.Insights(context.Background(), domain.Segment("vip")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown segment err = %v, want validation error", err)
	}
}

func TestRefresh(t *testing.T) {
	analytics := population()
	analytics.active = []int64{2, 3, 5}
	svc := newTestService(analytics, nil, nil)

	out, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if out.TotalProcessed != 3 {
		t.Errorf("total_processed = %d, want 3", out.TotalProcessed)
	}
	want := map[domain.Segment]int{domain.SegmentNewcomer: 1, domain.SegmentEngaged: 1, domain.SegmentConverter: 0, domain.SegmentLoyal: 1}
	for seg, n := range want {
		if out.Segments[seg] != n {
			t.Errorf("segments[%s] = %d, want %d", seg, out.Segments[seg], n)
		}
	}
}

func TestAutomatedActions(t *testing.T) {
	messenger := &fakeMessenger{failTo: map[int64]bool{2: true}}
	svc := newTestService(population(), []int64{1, 2, 3, 4, 5, 6}, messenger)

	result := svc.AutomatedActions(context.Background())

	// 1, 2 новички (2 заблокировал бота), 3 вовлечён без диагностики, 4 конвертирован
	if result.WelcomeMessages != 1 || result.DiagnosticReminders != 1 || result.PersonalOffers != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1/1/1 with 1 failed", result)
	}
	if len(messenger.sent) != 3 {
		t.Fatalf("sent = %d, want 3", len(messenger.sent))
	}
	if messenger.sent[0].chatID != 1 || messenger.sent[0].text != welcomeText {
		t.Errorf("first message = %+v, want welcome to 1", messenger.sent[0])
	}
	if messenger.sent[2].chatID != 4 || messenger.sent[2].text != personalOfferText {
		t.Errorf("last message = %+v, want offer to 4", messenger.sent[2])
	}
}
