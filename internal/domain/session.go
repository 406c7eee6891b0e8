package domain

import "time"

// IdleGapThreshold is the maximum silent gap between two consecutive events
// of one subject before a new session starts. The boundary is strict: a gap
// of exactly 1800s stays within the same session.
const IdleGapThreshold = 1800 * time.Second

// Session is a derived grouping of one subject's events with no gap larger
// than the idle threshold between consecutive events. Sessions are recomputed
// on every query and never persisted.
type Session struct {
	SubjectID       string    `json:"subject_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	EventCount      int       `json:"event_count"`
}

// HasDuration reports whether the session qualifies for duration-based
// aggregates. Single-event sessions have zero duration and are counted in
// session counts but excluded from duration averages.
func (s *Session) HasDuration() bool {
	return s.DurationSeconds > 0
}
