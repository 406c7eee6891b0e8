package domain

import "time"

// Granularity selects the calendar interval events are bucketed into.
// Truncation always happens in UTC.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Valid reports whether the granularity is one of the supported intervals
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// SeriesPoint is one bucket of a count time series
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SessionSeriesPoint is one bucket of the session series: how many sessions
// started in the bucket and their mean duration (zero-duration sessions
// excluded from the mean).
type SessionSeriesPoint struct {
	Date              time.Time `json:"date"`
	SessionCount      int       `json:"sessionCount"`
	DurationInSeconds float64   `json:"durationInSeconds"`
}

// SeriesQuery carries the uniform query parameters of the aggregation
// endpoints.
type SeriesQuery struct {
	From            time.Time
	To              time.Time
	Interval        Granularity
	ComparePrevious bool
}

// SeriesResult pairs the current-window series with the optional
// immediately-preceding window of equal length. Previous is aligned with
// Current by bucket index, not by calendar position.
type SeriesResult struct {
	Current  []SeriesPoint
	Previous []SeriesPoint
}

// SessionSeriesResult is the session-series analogue of SeriesResult
type SessionSeriesResult struct {
	Current  []SessionSeriesPoint
	Previous []SessionSeriesPoint
}

// ExportRow is one CSV export row, keyed by bucket
type ExportRow struct {
	PeriodLabel        string
	Year               int // meaningful for weekly/monthly exports only
	TotalChats         int
	ActiveUsers        int
	NewUsers           int
	FollowupChats      int
	SessionCount       int
	AvgDurationSeconds float64
}
