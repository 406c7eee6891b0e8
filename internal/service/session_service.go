package service

import (
	"sort"

	"insights-be/internal/domain"
)

// ReconstructSessions converts one query window's events into sessions using
// the idle-gap heuristic. The input does not need to be grouped or ordered;
// events are grouped by subject and stable-sorted by created_at, with ties
// keeping fetch order so the result is deterministic.
//
// A new session starts at a subject's first event and at any event whose gap
// to the immediately preceding event exceeds the idle threshold. The boundary
// is strict: a gap of exactly 1800s continues the session.
func ReconstructSessions(events []domain.Event) []domain.Session {
	if len(events) == 0 {
		return []domain.Session{}
	}

	bySubject := make(map[string][]domain.Event)
	for _, event := range events {
		bySubject[event.SubjectID] = append(bySubject[event.SubjectID], event)
	}

	subjects := make([]string, 0, len(bySubject))
	for subject := range bySubject {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	var sessions []domain.Session
	for _, subject := range subjects {
		group := bySubject[subject]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		sessions = append(sessions, walkSubject(subject, group)...)
	}

	return sessions
}

// walkSubject splits one subject's time-ordered events at idle gaps
func walkSubject(subject string, events []domain.Event) []domain.Session {
	var sessions []domain.Session
	start := 0

	for i := 1; i <= len(events); i++ {
		if i < len(events) && events[i].CreatedAt.Sub(events[i-1].CreatedAt) <= domain.IdleGapThreshold {
			continue
		}
		first, last := events[start], events[i-1]
		sessions = append(sessions, domain.Session{
			SubjectID:       subject,
			StartTime:       first.CreatedAt,
			EndTime:         last.CreatedAt,
			DurationSeconds: last.CreatedAt.Sub(first.CreatedAt).Seconds(),
			EventCount:      i - start,
		})
		start = i
	}

	return sessions
}
