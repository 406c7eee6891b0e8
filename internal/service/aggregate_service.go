package service

import (
	"math"
	"sort"
	"time"

	"insights-be/internal/domain"
)

// TruncateToBucket truncates a timestamp to the start of its calendar
// interval in UTC. Weeks are ISO weeks starting Monday.
func TruncateToBucket(t time.Time, g domain.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case domain.GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		sinceMonday := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -sinceMonday)
	case domain.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// CountEvents buckets all events and counts them per interval. Buckets with
// no events are omitted (sparse series); output is chronological.
func CountEvents(events []domain.Event, g domain.Granularity) []domain.SeriesPoint {
	counts := make(map[time.Time]float64)
	for _, event := range events {
		counts[TruncateToBucket(event.CreatedAt, g)]++
	}
	return toSeries(counts)
}

// CountActiveSubjects counts distinct subjects per bucket, restricted to root
// events so follow-ups within an existing thread do not inflate the count.
func CountActiveSubjects(events []domain.Event, g domain.Granularity) []domain.SeriesPoint {
	seen := make(map[time.Time]map[string]struct{})
	for _, event := range events {
		if !event.IsRoot() {
			continue
		}
		bucket := TruncateToBucket(event.CreatedAt, g)
		if seen[bucket] == nil {
			seen[bucket] = make(map[string]struct{})
		}
		seen[bucket][event.SubjectID] = struct{}{}
	}

	counts := make(map[time.Time]float64, len(seen))
	for bucket, subjects := range seen {
		counts[bucket] = float64(len(subjects))
	}
	return toSeries(counts)
}

// CountFollowups counts non-root events per bucket
func CountFollowups(events []domain.Event, g domain.Granularity) []domain.SeriesPoint {
	counts := make(map[time.Time]float64)
	for _, event := range events {
		if event.IsRoot() {
			continue
		}
		counts[TruncateToBucket(event.CreatedAt, g)]++
	}
	return toSeries(counts)
}

// CountNewSubjects counts subjects whose first event within the query window
// falls in the bucket.
func CountNewSubjects(events []domain.Event, g domain.Granularity) []domain.SeriesPoint {
	firstSeen := make(map[string]time.Time, len(events))
	for _, event := range events {
		if first, ok := firstSeen[event.SubjectID]; !ok || event.CreatedAt.Before(first) {
			firstSeen[event.SubjectID] = event.CreatedAt
		}
	}

	counts := make(map[time.Time]float64)
	for _, first := range firstSeen {
		counts[TruncateToBucket(first, g)]++
	}
	return toSeries(counts)
}

// BuildSessionSeries buckets sessions by start time and computes the session
// count and mean duration per bucket. Zero-duration (single-event) sessions
// count toward sessionCount but are excluded from the duration mean, which is
// rounded half-away-from-zero to 2 decimals.
func BuildSessionSeries(sessions []domain.Session, g domain.Granularity) []domain.SessionSeriesPoint {
	type bucketAgg struct {
		count         int
		durationSum   float64
		durationCount int
	}

	buckets := make(map[time.Time]*bucketAgg)
	for _, session := range sessions {
		bucket := TruncateToBucket(session.StartTime, g)
		agg := buckets[bucket]
		if agg == nil {
			agg = &bucketAgg{}
			buckets[bucket] = agg
		}
		agg.count++
		if session.HasDuration() {
			agg.durationSum += session.DurationSeconds
			agg.durationCount++
		}
	}

	points := make([]domain.SessionSeriesPoint, 0, len(buckets))
	for bucket, agg := range buckets {
		point := domain.SessionSeriesPoint{Date: bucket, SessionCount: agg.count}
		if agg.durationCount > 0 {
			point.DurationInSeconds = round2(agg.durationSum / float64(agg.durationCount))
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// Trend computes (last - first) / first over an ordered series. When the
// first value is zero the trend is undefined and nil is returned; division
// by zero here is an expected edge case, not an error.
func Trend(series []domain.SeriesPoint) *float64 {
	if len(series) == 0 {
		return nil
	}
	first := series[0].Value
	if first == 0 {
		return nil
	}
	trend := (series[len(series)-1].Value - first) / first
	return &trend
}

// PreviousWindow returns the equal-length window immediately preceding
// [from, to]. Its end is exclusive so the two windows never share an instant.
func PreviousWindow(from, to time.Time) (time.Time, time.Time) {
	return from.Add(-to.Sub(from)), from
}

// toSeries flattens a bucket map into a chronological series
func toSeries(counts map[time.Time]float64) []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, len(counts))
	for bucket, value := range counts {
		points = append(points, domain.SeriesPoint{Date: bucket, Value: value})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// round2 rounds to 2 decimal places, half away from zero
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
