package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-be/internal/domain"
)

var windowStart = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// evt builds a test event offset from windowStart
func evt(id, subject string, offset time.Duration) domain.Event {
	return domain.Event{
		ID:        id,
		SubjectID: subject,
		IPAddress: "1.2.3.4",
		CreatedAt: windowStart.Add(offset),
	}
}

func TestReconstructSessions_EmptyInput(t *testing.T) {
	assert.Empty(t, ReconstructSessions(nil))
	assert.Empty(t, ReconstructSessions([]domain.Event{}))
}

func TestReconstructSessions_IdleGapBoundary(t *testing.T) {
	t.Run("exactly 1800s stays in one session", func(t *testing.T) {
		sessions := ReconstructSessions([]domain.Event{
			evt("e1", "s1", 0),
			evt("e2", "s1", 1800*time.Second),
		})

		require.Len(t, sessions, 1)
		assert.Equal(t, 1800.0, sessions[0].DurationSeconds)
		assert.Equal(t, 2, sessions[0].EventCount)
	})

	t.Run("1800.001s splits into two sessions", func(t *testing.T) {
		sessions := ReconstructSessions([]domain.Event{
			evt("e1", "s1", 0),
			evt("e2", "s1", 1800*time.Second+time.Millisecond),
		})

		require.Len(t, sessions, 2)
		assert.Equal(t, 0.0, sessions[0].DurationSeconds)
		assert.Equal(t, 0.0, sessions[1].DurationSeconds)
	})
}

func TestReconstructSessions_Scenario(t *testing.T) {
	// Guest subject with events at t=0, t=900 and t=3000 seconds.
	sessions := ReconstructSessions([]domain.Event{
		evt("e1", "anon-s1", 0),
		evt("e2", "anon-s1", 900*time.Second),
		evt("e3", "anon-s1", 3000*time.Second),
	})

	require.Len(t, sessions, 2)

	assert.Equal(t, windowStart, sessions[0].StartTime)
	assert.Equal(t, windowStart.Add(900*time.Second), sessions[0].EndTime)
	assert.Equal(t, 900.0, sessions[0].DurationSeconds)
	assert.Equal(t, 2, sessions[0].EventCount)
	assert.True(t, sessions[0].HasDuration())

	assert.Equal(t, windowStart.Add(3000*time.Second), sessions[1].StartTime)
	assert.Equal(t, sessions[1].StartTime, sessions[1].EndTime)
	assert.Equal(t, 0.0, sessions[1].DurationSeconds)
	assert.Equal(t, 1, sessions[1].EventCount)
	assert.False(t, sessions[1].HasDuration())
}

func TestReconstructSessions_SingleEvent(t *testing.T) {
	sessions := ReconstructSessions([]domain.Event{evt("e1", "s1", 0)})

	require.Len(t, sessions, 1)
	assert.Equal(t, 0.0, sessions[0].DurationSeconds)
	assert.Equal(t, 1, sessions[0].EventCount)
	assert.False(t, sessions[0].HasDuration())
}

func TestReconstructSessions_SortsUnorderedInput(t *testing.T) {
	sessions := ReconstructSessions([]domain.Event{
		evt("e3", "s1", 20*time.Minute),
		evt("e1", "s1", 0),
		evt("e2", "s1", 10*time.Minute),
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, windowStart, sessions[0].StartTime)
	assert.Equal(t, windowStart.Add(20*time.Minute), sessions[0].EndTime)
	assert.Equal(t, 3, sessions[0].EventCount)
}

func TestReconstructSessions_SubjectsAreIndependent(t *testing.T) {
	// Two subjects interleaved in fetch order; each gets its own sessions
	// and subjects come back in sorted order.
	sessions := ReconstructSessions([]domain.Event{
		evt("e1", "s2", 0),
		evt("e2", "s1", 5*time.Minute),
		evt("e3", "s2", 10*time.Minute),
		evt("e4", "s1", 2*time.Hour),
	})

	require.Len(t, sessions, 3)
	assert.Equal(t, "s1", sessions[0].SubjectID)
	assert.Equal(t, "s1", sessions[1].SubjectID)
	assert.Equal(t, "s2", sessions[2].SubjectID)
	assert.Equal(t, 2, sessions[2].EventCount)
}

func TestReconstructSessions_TimestampTiesKeepFetchOrder(t *testing.T) {
	sessions := ReconstructSessions([]domain.Event{
		evt("e1", "s1", 0),
		evt("e2", "s1", 0),
		evt("e3", "s1", 0),
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].EventCount)
	assert.Equal(t, 0.0, sessions[0].DurationSeconds)
}
