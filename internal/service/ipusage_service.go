package service

import (
	"sort"

	"insights-be/internal/domain"
)

// BuildIpUsageRecords groups every event by IP address (follow-ups count too)
// and classifies each hit as guest or authenticated by the subject prefix
// convention. Records come back sorted by anon hits descending, then total
// hits descending, then IP ascending for determinism, with the high-usage
// flag already computed.
func BuildIpUsageRecords(events []domain.Event, guestPrefix string) []domain.IpUsageRecord {
	byIP := make(map[string]*domain.IpUsageRecord)

	for _, event := range events {
		record := byIP[event.IPAddress]
		if record == nil {
			record = &domain.IpUsageRecord{
				IPAddress: event.IPAddress,
				FirstSeen: event.CreatedAt,
				LastSeen:  event.CreatedAt,
			}
			byIP[event.IPAddress] = record
		}

		record.TotalHits++
		if event.IsGuest(guestPrefix) {
			record.AnonHits++
		} else {
			record.AuthHits++
		}
		if event.CreatedAt.Before(record.FirstSeen) {
			record.FirstSeen = event.CreatedAt
		}
		if event.CreatedAt.After(record.LastSeen) {
			record.LastSeen = event.CreatedAt
		}
	}

	records := make([]domain.IpUsageRecord, 0, len(byIP))
	for _, record := range byIP {
		// Guarded even though a non-empty group always has hits.
		if record.TotalHits > 0 {
			record.AnonPct = round2(float64(record.AnonHits) / float64(record.TotalHits) * 100)
		}
		record.HighUsage = record.IsHighUsage()
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].AnonHits != records[j].AnonHits {
			return records[i].AnonHits > records[j].AnonHits
		}
		if records[i].TotalHits != records[j].TotalHits {
			return records[i].TotalHits > records[j].TotalHits
		}
		return records[i].IPAddress < records[j].IPAddress
	})

	return records
}

// FilterIpUsage applies the filter chain in its documented order: allow-list
// exclusion, institution exclusion (unless institutions are shown), then the
// guest/user filter. The predicates are independent, but the order is fixed
// for testability.
func FilterIpUsage(
	records []domain.IpUsageRecord,
	allowList []domain.AllowListEntry,
	showInstitutions bool,
	isInstitution func(ip string) bool,
	filter domain.UserFilter,
) []domain.IpUsageRecord {
	allowed := make(map[string]struct{}, len(allowList))
	for _, entry := range allowList {
		allowed[entry.IPAddress] = struct{}{}
	}

	filtered := make([]domain.IpUsageRecord, 0, len(records))
	for _, record := range records {
		if _, ok := allowed[record.IPAddress]; ok {
			continue
		}
		if !showInstitutions && isInstitution != nil && isInstitution(record.IPAddress) {
			continue
		}
		switch filter {
		case domain.UserFilterGuests:
			if record.AnonHits == 0 {
				continue
			}
		case domain.UserFilterUsers:
			if record.AuthHits == 0 {
				continue
			}
		}
		filtered = append(filtered, record)
	}

	return filtered
}
