package segmentation

import (
	"testing"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		counts     domain.SegmentCounts
		segment    domain.Segment
		engagement domain.EngagementLevel
		potential  domain.ConversionPotential
	}{
		{"no activity", domain.SegmentCounts{}, domain.SegmentNewcomer, domain.EngagementLow, domain.ConversionLow},
		{"loyal converted", domain.SegmentCounts{SessionCount: 12, EventCount: 60, HasCompletedDiagnostics: true}, domain.SegmentLoyal, domain.EngagementHigh, domain.ConversionConverted},
		{"loyal boundary", domain.SegmentCounts{SessionCount: 10, EventCount: 50}, domain.SegmentLoyal, domain.EngagementHigh, domain.ConversionHigh},
		{"many sessions few events", domain.SegmentCounts{SessionCount: 10, EventCount: 49}, domain.SegmentEngaged, domain.EngagementMedium, domain.ConversionHigh},
		{"engaged boundary", domain.SegmentCounts{SessionCount: 3, EventCount: 15}, domain.SegmentEngaged, domain.EngagementMedium, domain.ConversionHigh},
		{"one session converter", domain.SegmentCounts{SessionCount: 1, EventCount: 3, HasCompletedDiagnostics: true}, domain.SegmentConverter, domain.EngagementLow, domain.ConversionConverted},
		{"one session newcomer", domain.SegmentCounts{SessionCount: 1, EventCount: 7}, domain.SegmentNewcomer, domain.EngagementLow, domain.ConversionMedium},
		{"diagnostics without sessions", domain.SegmentCounts{HasCompletedDiagnostics: true}, domain.SegmentNewcomer, domain.EngagementLow, domain.ConversionConverted},
		{"high potential needs two sessions", domain.SegmentCounts{SessionCount: 1, EventCount: 12}, domain.SegmentNewcomer, domain.EngagementLow, domain.ConversionMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segment, engagement, potential := Classify(tt.counts)
			if segment != tt.segment || engagement != tt.engagement || potential != tt.potential {
				t.Errorf("Classify(%+v) = %s/%s/%s, want %s/%s/%s",
					tt.counts, segment, engagement, potential, tt.segment, tt.engagement, tt.potential)
			}
		})
	}
}

func TestClassify_EngagementMonotonicInSessions(t *testing.T) {
	for _, events := range []int64{0, 5, 15, 49, 50, 100} {
		prev := -1
		for _, sessions := range []int64{0, 1, 3, 10, 20} {
			_, engagement, _ := Classify(domain.SegmentCounts{SessionCount: sessions, EventCount: events})
			if engagement.Rank() < prev {
				t.Errorf("events=%d: engagement dropped to %s at sessions=%d", events, engagement, sessions)
			}
			prev = engagement.Rank()
		}
	}
}

func TestContentPreferences(t *testing.T) {
	got := ContentPreferences(
		[]domain.CountedValue{{Value: "section", Count: 4}, {Value: "article", Count: 1}},
		[]domain.CountedValue{{Value: "general", Count: 2}},
	)
	want := []string{"likes_section", "likes_article", "ai_general"}
	if len(got) != len(want) {
		t.Fatalf("ContentPreferences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ContentPreferences[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSourcePattern(t *testing.T) {
	visits := []domain.Payload{
		{"source": "telegram"},
		{"source": "vk"},
		{"source": "vk"},
		{"referrer": "x"},
		{"source": "telegram"},
	}
	// при равенстве выигрывает более свежий
	if got, ok := SourcePattern(visits); !ok || got != "source_telegram" {
		t.Errorf("SourcePattern = %q, %v; want source_telegram", got, ok)
	}

	visits = append(visits, domain.Payload{"source": "vk"})
	if got, _ := SourcePattern(visits); got != "source_vk" {
		t.Errorf("SourcePattern = %q, want source_vk", got)
	}

	if _, ok := SourcePattern([]domain.Payload{{"referrer": "x"}}); ok {
		t.Error("SourcePattern without sources returned a tag")
	}
}

func TestHourBucket(t *testing.T) {
	tests := map[int]string{
		0: domain.HourNight, 5: domain.HourNight, 6: domain.HourMorning, 12: domain.HourMorning,
		13: domain.HourAfternoon, 18: domain.HourAfternoon, 19: domain.HourEvening, 22: domain.HourEvening, 23: domain.HourNight,
	}
	for hour, want := range tests {
		if got := HourBucket(hour); got != want {
			t.Errorf("HourBucket(%d) = %s, want %s", hour, got, want)
		}
	}
}

func TestHourPattern(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day.Add(20 * time.Hour),
		day.Add(20*time.Hour + 5*time.Minute),
		day.Add(9 * time.Hour),
	}
	if got, ok := HourPattern(times); !ok || got != "active_evening" {
		t.Errorf("HourPattern = %q, %v; want active_evening", got, ok)
	}
	if _, ok := HourPattern(nil); ok {
		t.Error("HourPattern(nil) returned a tag")
	}
}

func TestFrequencyPattern(t *testing.T) {
	now := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	daysAgo := func(d float64) time.Time { return now.Add(-time.Duration(d * 24 * float64(time.Hour))) }

	tests := []struct {
		name   string
		starts []time.Time
		want   string
		ok     bool
	}{
		{"no sessions", nil, "", false},
		{"single session right now", []time.Time{now}, "", false},
		{"frequent", []time.Time{daysAgo(2), daysAgo(1), daysAgo(0.5)}, "frequent_visitor", true},
		{"regular", []time.Time{daysAgo(10), daysAgo(5), daysAgo(1)}, "regular_visitor", true},
		{"occasional", []time.Time{daysAgo(30), daysAgo(2)}, "occasional_visitor", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FrequencyPattern(tt.starts, now)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FrequencyPattern = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	seg := domain.Segmentation{
		Segment:              domain.SegmentEngaged,
		EngagementLevel:      domain.EngagementMedium,
		ContentPreference:    []string{"likes_section"},
		TotalSessions:        3,
		DiagnosticsCompleted: false,
	}

	tests := []struct {
		name     string
		criteria map[string]any
		want     bool
	}{
		{"empty criteria", map[string]any{}, true},
		{"segment", map[string]any{"segment": "engaged"}, true},
		{"segment and flag", map[string]any{"segment": "engaged", "diagnostics_completed": false}, true},
		{"json number", map[string]any{"total_sessions": 3.0}, true},
		{"json array", map[string]any{"content_preference": []any{"likes_section"}}, true},
		{"mismatch", map[string]any{"segment": "loyal"}, false},
		{"bool vs string", map[string]any{"diagnostics_completed": "false"}, false},
		{"unknown key", map[string]any{"tier": "gold"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(seg, tt.criteria); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.criteria, got, tt.want)
			}
		})
	}
}

func TestRecommendationsFor(t *testing.T) {
	rec := RecommendationsFor(7, &domain.Segmentation{
		Segment:           domain.SegmentEngaged,
		EngagementLevel:   domain.EngagementMedium,
		ContentPreference: []string{"likes_section", "ai_general"},
	})
	if len(rec.Recommendations) != 1 || rec.Recommendations[0].Type != "conversion" {
		t.Errorf("recommendations = %+v, want conversion", rec.Recommendations)
	}
	if len(rec.NextBestActions) != 1 || rec.NextBestActions[0] != "personal_path_view" {
		t.Errorf("next actions = %v, want personal_path_view", rec.NextBestActions)
	}
	if len(rec.ContentSuggestions) != 2 {
		t.Errorf("content suggestions = %+v, want 2", rec.ContentSuggestions)
	}
}
