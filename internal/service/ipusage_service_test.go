package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-be/internal/domain"
)

const guestPrefix = "anon"

func hit(subject, ip string, created time.Time) domain.Event {
	return domain.Event{ID: subject + "-" + ip, SubjectID: subject, IPAddress: ip, CreatedAt: created}
}

func TestBuildIpUsageRecords_Scenario(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	events := []domain.Event{
		hit("anon1", "1.2.3.4", base),
		hit("anon2", "1.2.3.4", base.Add(time.Minute)),
		hit("user1", "1.2.3.4", base.Add(2*time.Minute)),
	}

	records := BuildIpUsageRecords(events, guestPrefix)

	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "1.2.3.4", record.IPAddress)
	assert.Equal(t, 3, record.TotalHits)
	assert.Equal(t, 2, record.AnonHits)
	assert.Equal(t, 1, record.AuthHits)
	assert.Equal(t, 66.67, record.AnonPct)
	assert.Equal(t, base, record.FirstSeen)
	assert.Equal(t, base.Add(2*time.Minute), record.LastSeen)
}

func TestBuildIpUsageRecords_Invariants(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	events := []domain.Event{
		hit("anon1", "1.2.3.4", base),
		hit("user1", "1.2.3.4", base),
		hit("user2", "5.6.7.8", base),
		hit("anon1", "9.9.9.9", base),
		hit("anon2", "9.9.9.9", base),
	}

	for _, record := range BuildIpUsageRecords(events, guestPrefix) {
		assert.Equal(t, record.TotalHits, record.AnonHits+record.AuthHits, record.IPAddress)
		assert.GreaterOrEqual(t, record.AnonPct, 0.0, record.IPAddress)
		assert.LessOrEqual(t, record.AnonPct, 100.0, record.IPAddress)
	}
}

func TestBuildIpUsageRecords_FollowupsCount(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	thread := "root-1"
	events := []domain.Event{
		{ID: thread, SubjectID: "anon1", IPAddress: "1.2.3.4", CreatedAt: base},
		{ID: "f1", SubjectID: "anon1", IPAddress: "1.2.3.4", ThreadID: &thread, CreatedAt: base.Add(time.Minute)},
	}

	records := BuildIpUsageRecords(events, guestPrefix)

	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].TotalHits)
}

func TestBuildIpUsageRecords_SortOrder(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	var events []domain.Event
	add := func(ip string, anon, auth int) {
		for i := 0; i < anon; i++ {
			events = append(events, hit("anon-x", ip, base))
		}
		for i := 0; i < auth; i++ {
			events = append(events, hit("user-x", ip, base))
		}
	}
	add("3.3.3.3", 2, 0)
	add("1.1.1.1", 5, 1)
	add("2.2.2.2", 5, 3)

	records := BuildIpUsageRecords(events, guestPrefix)

	require.Len(t, records, 3)
	// anon hits descending, ties broken by total hits descending.
	assert.Equal(t, "2.2.2.2", records[0].IPAddress)
	assert.Equal(t, "1.1.1.1", records[1].IPAddress)
	assert.Equal(t, "3.3.3.3", records[2].IPAddress)
}

func TestIpUsageRecord_HighUsageFlag(t *testing.T) {
	tests := []struct {
		name   string
		record domain.IpUsageRecord
		want   bool
	}{
		{"ten anon hits meets first clause", domain.IpUsageRecord{AnonHits: 10, TotalHits: 10, AnonPct: 100}, true},
		{"seventy percent fails both clauses", domain.IpUsageRecord{AnonHits: 7, TotalHits: 10, AnonPct: 70}, false},
		{"eighty percent with volume meets second clause", domain.IpUsageRecord{AnonHits: 8, TotalHits: 10, AnonPct: 80}, true},
		{"high ratio but low volume", domain.IpUsageRecord{AnonHits: 4, TotalHits: 4, AnonPct: 100}, false},
		{"many anon hits with low ratio", domain.IpUsageRecord{AnonHits: 12, TotalHits: 200, AnonPct: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.IsHighUsage())
		})
	}
}

func TestFilterIpUsage_AllowList(t *testing.T) {
	records := []domain.IpUsageRecord{
		{IPAddress: "1.1.1.1", AnonHits: 5, TotalHits: 5},
		{IPAddress: "2.2.2.2", AnonHits: 3, TotalHits: 3},
	}
	allowList := []domain.AllowListEntry{{IPAddress: "1.1.1.1", Note: "campus proxy"}}

	filtered := FilterIpUsage(records, allowList, true, nil, domain.UserFilterAll)

	require.Len(t, filtered, 1)
	assert.Equal(t, "2.2.2.2", filtered[0].IPAddress)
}

func TestFilterIpUsage_InstitutionToggle(t *testing.T) {
	records := []domain.IpUsageRecord{
		{IPAddress: "10.0.0.5", AnonHits: 5, TotalHits: 5},
		{IPAddress: "8.8.8.8", AnonHits: 3, TotalHits: 3},
	}
	isInstitution := func(ip string) bool { return ip == "10.0.0.5" }

	t.Run("hidden institutions are excluded", func(t *testing.T) {
		filtered := FilterIpUsage(records, nil, false, isInstitution, domain.UserFilterAll)
		require.Len(t, filtered, 1)
		assert.Equal(t, "8.8.8.8", filtered[0].IPAddress)
	})

	t.Run("shown institutions are kept", func(t *testing.T) {
		filtered := FilterIpUsage(records, nil, true, isInstitution, domain.UserFilterAll)
		assert.Len(t, filtered, 2)
	})
}

func TestFilterIpUsage_UserFilter(t *testing.T) {
	records := []domain.IpUsageRecord{
		{IPAddress: "1.1.1.1", AnonHits: 5, AuthHits: 0, TotalHits: 5},
		{IPAddress: "2.2.2.2", AnonHits: 0, AuthHits: 4, TotalHits: 4},
		{IPAddress: "3.3.3.3", AnonHits: 2, AuthHits: 2, TotalHits: 4},
	}

	t.Run("guests", func(t *testing.T) {
		filtered := FilterIpUsage(records, nil, true, nil, domain.UserFilterGuests)
		require.Len(t, filtered, 2)
		assert.Equal(t, "1.1.1.1", filtered[0].IPAddress)
		assert.Equal(t, "3.3.3.3", filtered[1].IPAddress)
	})

	t.Run("users", func(t *testing.T) {
		filtered := FilterIpUsage(records, nil, true, nil, domain.UserFilterUsers)
		require.Len(t, filtered, 2)
		assert.Equal(t, "2.2.2.2", filtered[0].IPAddress)
		assert.Equal(t, "3.3.3.3", filtered[1].IPAddress)
	})

	t.Run("all", func(t *testing.T) {
		assert.Len(t, FilterIpUsage(records, nil, true, nil, domain.UserFilterAll), 3)
	})
}

func TestBuildIpUsageRecords_EmptyInput(t *testing.T) {
	assert.Empty(t, BuildIpUsageRecords(nil, guestPrefix))
}
