package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"insights-be/internal/domain"
	apperrors "insights-be/pkg/errors"
)

// Accepted timestamp layouts for from/to query parameters
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

// parseSeriesQuery validates the uniform parameters of the aggregation
// endpoints. Invalid parameters are rejected here, before the event source
// is touched.
func parseSeriesQuery(r *http.Request) (*domain.SeriesQuery, error) {
	from, err := requireTimeParam(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := requireTimeParam(r, "to")
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperrors.NewInvalidQueryError("'to' must not precede 'from'", nil)
	}

	interval, err := parseInterval(r)
	if err != nil {
		return nil, err
	}

	compare, err := parseBoolParam(r, "compareToPreviousPeriod")
	if err != nil {
		return nil, err
	}

	return &domain.SeriesQuery{
		From:            from,
		To:              to,
		Interval:        interval,
		ComparePrevious: compare,
	}, nil
}

// parseIpUsageQuery validates the IP usage endpoint parameters. from/to are
// optional here; an absent bound leaves the window open on that side.
func parseIpUsageQuery(r *http.Request) (*domain.IpUsageQuery, error) {
	from, err := optionalTimeParam(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := optionalTimeParam(r, "to")
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.NewInvalidQueryError("'to' must not precede 'from'", nil)
	}

	showInstitutions, err := parseBoolParam(r, "showInstitutions")
	if err != nil {
		return nil, err
	}

	filter := domain.UserFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = domain.UserFilterAll
	}
	if !filter.Valid() {
		return nil, apperrors.NewInvalidQueryError("filter must be one of guests, users, all", map[string]interface{}{
			"filter": string(filter),
		})
	}

	return &domain.IpUsageQuery{
		From:             from,
		To:               to,
		ShowInstitutions: showInstitutions,
		Filter:           filter,
	}, nil
}

func requireTimeParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, apperrors.NewInvalidQueryError(fmt.Sprintf("'%s' is required", name), nil)
	}
	return parseTime(name, value)
}

func optionalTimeParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := parseTime(name, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseTime(name, value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, apperrors.NewInvalidQueryError(
		fmt.Sprintf("'%s' must be an RFC3339 timestamp or YYYY-MM-DD date", name),
		map[string]interface{}{name: value},
	)
}

func parseInterval(r *http.Request) (domain.Granularity, error) {
	value := r.URL.Query().Get("interval")
	if value == "" {
		return domain.GranularityWeek, nil
	}
	interval := domain.Granularity(value)
	if !interval.Valid() {
		return "", apperrors.NewInvalidQueryError("interval must be one of day, week, month", map[string]interface{}{
			"interval": value,
		})
	}
	return interval, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, apperrors.NewInvalidQueryError(fmt.Sprintf("'%s' must be a boolean", name), map[string]interface{}{
			name: value,
		})
	}
	return parsed, nil
}
