package segmentation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

// Пороги классификации
const (
	loyalSessions   = 10
	loyalEvents     = 50
	engagedSessions = 3
	engagedEvents   = 15

	highPotentialEvents   = 10
	highPotentialSessions = 2
	mediumPotentialEvents = 5
)

// Classify сегмент, вовлечённость и потенциал конверсии по агрегатам пользователя.
// Правила проверяются от самого строгого, срабатывает первое подошедшее
func Classify(c domain.SegmentCounts) (domain.Segment, domain.EngagementLevel, domain.ConversionPotential) {
	var (
		segment    domain.Segment
		engagement domain.EngagementLevel
	)
	switch {
	case c.SessionCount >= loyalSessions && c.EventCount >= loyalEvents:
		segment, engagement = domain.SegmentLoyal, domain.EngagementHigh
	case c.SessionCount >= engagedSessions && c.EventCount >= engagedEvents:
		segment, engagement = domain.SegmentEngaged, domain.EngagementMedium
	case c.SessionCount >= 1 && c.HasCompletedDiagnostics:
		segment, engagement = domain.SegmentConverter, domain.EngagementLow
	default:
		segment, engagement = domain.SegmentNewcomer, domain.EngagementLow
	}

	return segment, engagement, conversionPotential(c)
}

func conversionPotential(c domain.SegmentCounts) domain.ConversionPotential {
	switch {
	case c.HasCompletedDiagnostics:
		return domain.ConversionConverted
	case c.EventCount >= highPotentialEvents && c.SessionCount >= highPotentialSessions:
		return domain.ConversionHigh
	case c.EventCount >= mediumPotentialEvents:
		return domain.ConversionMedium
	default:
		return domain.ConversionLow
	}
}

// ContentPreferences теги likes_<тип контента> и ai_<тип диалога> в порядке частоты
func ContentPreferences(contentTypes, conversationTypes []domain.CountedValue) []string {
	prefs := make([]string, 0, len(contentTypes)+len(conversationTypes))
	for _, v := range contentTypes {
		prefs = append(prefs, "likes_"+v.Value)
	}
	for _, v := range conversationTypes {
		prefs = append(prefs, "ai_"+v.Value)
	}
	return prefs
}

// SourcePattern самый частый источник среди последних визитов (визиты от новых к старым).
// При равенстве побеждает более свежий источник
func SourcePattern(visits []domain.Payload) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, v := range visits {
		source := v.String("source")
		if source == "" {
			continue
		}
		if counts[source] == 0 {
			order = append(order, source)
		}
		counts[source]++
	}
	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, source := range order[1:] {
		if counts[source] > counts[best] {
			best = source
		}
	}
	return "source_" + best, true
}

// HourBucket интервал суток для часа (UTC)
func HourBucket(hour int) string {
	switch {
	case hour >= 6 && hour <= 12:
		return domain.HourMorning
	case hour > 12 && hour <= 18:
		return domain.HourAfternoon
	case hour > 18 && hour <= 22:
		return domain.HourEvening
	default:
		return domain.HourNight
	}
}

// HourPattern active_<интервал> по самому частому часу событий; при равенстве берётся более ранний час
func HourPattern(eventTimes []time.Time) (string, bool) {
	if len(eventTimes) == 0 {
		return "", false
	}
	var hours [24]int
	for _, t := range eventTimes {
		hours[t.UTC().Hour()]++
	}
	best := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[best] {
			best = h
		}
	}
	return "active_" + HourBucket(best), true
}

// FrequencyPattern <частота>_visitor: сессий в день с первой сессии.
// Без истории (нет сессий или первая начата прямо сейчас) тег не ставится
func FrequencyPattern(sessionStarts []time.Time, now time.Time) (string, bool) {
	if len(sessionStarts) == 0 {
		return "", false
	}
	first := sessionStarts[0]
	for _, t := range sessionStarts[1:] {
		if t.Before(first) {
			first = t
		}
	}
	days := now.Sub(first).Hours() / 24
	if days <= 0 {
		return "", false
	}

	perDay := float64(len(sessionStarts)) / days
	switch {
	case perDay >= 1:
		return domain.VisitFrequent + "_visitor", true
	case perDay >= 0.3:
		return domain.VisitRegular + "_visitor", true
	default:
		return domain.VisitOccasional + "_visitor", true
	}
}

// Matches точное совпадение всех критериев с плоским представлением сегментации.
// Значения сравниваются после приведения к JSON-виду, поэтому 3 и 3.0 равны
func Matches(segmentation domain.Segmentation, criteria map[string]any) bool {
	flat := segmentation.AsMap()
	for key, want := range criteria {
		got, ok := flat[key]
		if !ok {
			return false
		}
		if !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b any) bool {
	return normalize(a) == normalize(b)
}

func normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "s:" + x
	case bool:
		return fmt.Sprintf("b:%t", x)
	case int:
		return fmt.Sprintf("n:%g", float64(x))
	case int64:
		return fmt.Sprintf("n:%g", float64(x))
	case float64:
		return fmt.Sprintf("n:%g", x)
	case time.Time:
		return "s:" + x.UTC().Format(time.RFC3339Nano)
	case []string:
		return "a:" + strings.Join(x, "\x00")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return fmt.Sprintf("?%v", x)
			}
			parts[i] = s
		}
		return "a:" + strings.Join(parts, "\x00")
	default:
		return fmt.Sprintf("?%v", x)
	}
}

// topCounted самые частые значения, при равенстве по алфавиту
func topCounted(counts map[string]int64, limit int) []domain.CountedValue {
	out := make([]domain.CountedValue, 0, len(counts))
	for value, count := range counts {
		out = append(out, domain.CountedValue{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
