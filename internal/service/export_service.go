package service

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"insights-be/internal/domain"
)

// BuildExportRows merges the per-bucket metrics into flat CSV export rows,
// one per bucket that saw any activity, in chronological order.
func BuildExportRows(events []domain.Event, sessions []domain.Session, g domain.Granularity) []domain.ExportRow {
	totals := seriesByBucket(CountEvents(events, g))
	active := seriesByBucket(CountActiveSubjects(events, g))
	newSubjects := seriesByBucket(CountNewSubjects(events, g))
	followups := seriesByBucket(CountFollowups(events, g))

	sessionPoints := make(map[time.Time]domain.SessionSeriesPoint)
	for _, point := range BuildSessionSeries(sessions, g) {
		sessionPoints[point.Date] = point
	}

	buckets := make(map[time.Time]struct{})
	for bucket := range totals {
		buckets[bucket] = struct{}{}
	}
	for bucket := range sessionPoints {
		buckets[bucket] = struct{}{}
	}

	ordered := make([]time.Time, 0, len(buckets))
	for bucket := range buckets {
		ordered = append(ordered, bucket)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	rows := make([]domain.ExportRow, 0, len(ordered))
	for _, bucket := range ordered {
		label, year := periodLabel(bucket, g)
		sessionPoint := sessionPoints[bucket]
		rows = append(rows, domain.ExportRow{
			PeriodLabel:        label,
			Year:               year,
			TotalChats:         int(totals[bucket]),
			ActiveUsers:        int(active[bucket]),
			NewUsers:           int(newSubjects[bucket]),
			FollowupChats:      int(followups[bucket]),
			SessionCount:       sessionPoint.SessionCount,
			AvgDurationSeconds: sessionPoint.DurationInSeconds,
		})
	}

	return rows
}

// WriteCSV renders export rows as CSV. Weekly and monthly exports carry a
// separate year column after the period label.
func WriteCSV(w io.Writer, g domain.Granularity, rows []domain.ExportRow) error {
	withYear := g == domain.GranularityWeek || g == domain.GranularityMonth

	header := []string{string(g)}
	if withYear {
		header = append(header, "year")
	}
	header = append(header, "totalChats", "activeUsers", "newUsers", "followupChats", "sessionCount", "avgDurationSeconds")
	if err := writeCSVRow(w, header); err != nil {
		return err
	}

	for _, row := range rows {
		fields := []string{row.PeriodLabel}
		if withYear {
			fields = append(fields, strconv.Itoa(row.Year))
		}
		fields = append(fields,
			strconv.Itoa(row.TotalChats),
			strconv.Itoa(row.ActiveUsers),
			strconv.Itoa(row.NewUsers),
			strconv.Itoa(row.FollowupChats),
			strconv.Itoa(row.SessionCount),
			strconv.FormatFloat(row.AvgDurationSeconds, 'f', 2, 64),
		)
		if err := writeCSVRow(w, fields); err != nil {
			return err
		}
	}

	return nil
}

// periodLabel renders the bucket start as the export's period label. Days are
// full dates; weeks use the ISO week number with the ISO year alongside;
// months use the month name with the calendar year alongside.
func periodLabel(bucket time.Time, g domain.Granularity) (string, int) {
	switch g {
	case domain.GranularityWeek:
		year, week := bucket.ISOWeek()
		return fmt.Sprintf("W%02d", week), year
	case domain.GranularityMonth:
		return bucket.Month().String(), bucket.Year()
	default:
		return bucket.Format("2006-01-02"), bucket.Year()
	}
}

func writeCSVRow(w io.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = escapeCSVField(field)
	}
	_, err := io.WriteString(w, strings.Join(escaped, ",")+"\n")
	return err
}

// escapeCSVField quotes a field containing a comma, quote character, or
// newline, doubling embedded quotes.
func escapeCSVField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// seriesByBucket indexes a series by bucket start
func seriesByBucket(series []domain.SeriesPoint) map[time.Time]float64 {
	byBucket := make(map[time.Time]float64, len(series))
	for _, point := range series {
		byBucket[point.Date] = point.Value
	}
	return byBucket
}
