package domain

import "time"

// High-usage thresholds. Centralized here so the flag is computed in exactly
// one place; presentation must not duplicate these numbers.
const (
	HighUsageAnonHits  = 10
	HighUsageAnonPct   = 80.0
	HighUsageTotalHits = 10
)

// UserFilter narrows the IP usage table to guest or authenticated traffic
type UserFilter string

const (
	UserFilterGuests UserFilter = "guests"
	UserFilterUsers  UserFilter = "users"
	UserFilterAll    UserFilter = "all"
)

// Valid reports whether the filter is one of the supported values
func (f UserFilter) Valid() bool {
	switch f {
	case UserFilterGuests, UserFilterUsers, UserFilterAll:
		return true
	}
	return false
}

// IpUsageRecord aggregates all events of one IP address within the query
// window. Invariant: TotalHits == AnonHits + AuthHits. Records are computed
// fresh per request and only filtered and sorted downstream.
type IpUsageRecord struct {
	IPAddress string    `json:"ip_address"`
	TotalHits int       `json:"total_hits"`
	AnonHits  int       `json:"anon_hits"`
	AuthHits  int       `json:"auth_hits"`
	AnonPct   float64   `json:"anon_pct"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	HighUsage bool      `json:"high_usage"`
}

// IsHighUsage reports whether the record crosses the high-usage thresholds:
// many guest hits in absolute terms, or a mostly-guest profile with enough
// volume to matter.
func (r *IpUsageRecord) IsHighUsage() bool {
	if r.AnonHits >= HighUsageAnonHits {
		return true
	}
	return r.AnonPct >= HighUsageAnonPct && r.TotalHits >= HighUsageTotalHits
}

// AllowListEntry is one user-curated allow-list row. The core only honors
// the list as a filter; persistence belongs to the admin surface.
type AllowListEntry struct {
	IPAddress string `json:"ip_address"`
	Note      string `json:"note"`
}

// IpUsageQuery carries the parameters of the IP usage endpoint. From/To are
// optional; a nil bound leaves the window open on that side.
type IpUsageQuery struct {
	From             *time.Time
	To               *time.Time
	ShowInstitutions bool
	Filter           UserFilter
}
