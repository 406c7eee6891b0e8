package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-be/internal/config"
	"insights-be/internal/domain"
	"insights-be/internal/registry"
	"insights-be/internal/repository"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// fakeEventRepo records every query it receives and serves canned windows
type fakeEventRepo struct {
	queries []repository.EventQuery
	events  []domain.Event
	err     error
}

func (f *fakeEventRepo) FetchEvents(_ context.Context, q repository.EventQuery) ([]domain.Event, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeAllowListRepo struct {
	entries []domain.AllowListEntry
	err     error
}

func (f *fakeAllowListRepo) GetAll(context.Context) ([]domain.AllowListEntry, error) {
	return f.entries, f.err
}
func (f *fakeAllowListRepo) Put(context.Context, string, string) error { return nil }
func (f *fakeAllowListRepo) Remove(context.Context, string) error      { return nil }

func emptyRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "institutions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	return registry.New(path, logger.NewNop())
}

func newTestService(t *testing.T, eventRepo *fakeEventRepo, allowRepo *fakeAllowListRepo) AnalyticsService {
	t.Helper()
	cfg := &config.Config{
		GuestPrefix:      "anon",
		EventPageSize:    1000,
		ExcludedSubjects: []string{"qa-bot"},
	}
	return NewAnalyticsService(eventRepo, allowRepo, emptyRegistry(t), cfg, logger.NewNop())
}

func seriesQuery(t *testing.T, compare bool) domain.SeriesQuery {
	t.Helper()
	return domain.SeriesQuery{
		From:            at(t, "2025-03-10T00:00:00Z"),
		To:              at(t, "2025-03-20T00:00:00Z"),
		Interval:        domain.GranularityDay,
		ComparePrevious: compare,
	}
}

func TestChatSeries_SingleWindow(t *testing.T) {
	eventRepo := &fakeEventRepo{events: []domain.Event{
		{ID: "e1", SubjectID: "anon1", IPAddress: "1.2.3.4", CreatedAt: at(t, "2025-03-10T10:00:00Z")},
	}}
	svc := newTestService(t, eventRepo, &fakeAllowListRepo{})

	result, err := svc.ChatSeries(context.Background(), seriesQuery(t, false))
	require.NoError(t, err)

	require.Len(t, result.Current, 1)
	assert.Equal(t, 1.0, result.Current[0].Value)
	assert.Nil(t, result.Previous)

	require.Len(t, eventRepo.queries, 1)
	q := eventRepo.queries[0]
	assert.Equal(t, at(t, "2025-03-10T00:00:00Z"), *q.From)
	assert.Equal(t, at(t, "2025-03-20T00:00:00Z"), *q.To)
	assert.Equal(t, repository.BoundInclusive, q.EndBound)
	assert.Equal(t, []string{"qa-bot"}, q.ExcludeSubjects)
	assert.Equal(t, 1000, q.PageSize)
}

func TestChatSeries_ComparePreviousFetchesTrailingWindow(t *testing.T) {
	eventRepo := &fakeEventRepo{}
	svc := newTestService(t, eventRepo, &fakeAllowListRepo{})

	result, err := svc.ChatSeries(context.Background(), seriesQuery(t, true))
	require.NoError(t, err)
	assert.NotNil(t, result)

	require.Len(t, eventRepo.queries, 2)
	prev := eventRepo.queries[1]
	assert.Equal(t, at(t, "2025-02-28T00:00:00Z"), *prev.From)
	assert.Equal(t, at(t, "2025-03-10T00:00:00Z"), *prev.To)
	// The trailing window must not share its end instant with the current
	// window's start.
	assert.Equal(t, repository.BoundExclusive, prev.EndBound)
}

func TestChatSeries_SourceErrorPropagates(t *testing.T) {
	sourceErr := apperrors.NewSourceUnavailableError("failed to fetch events", errors.New("timeout"))
	svc := newTestService(t, &fakeEventRepo{err: sourceErr}, &fakeAllowListRepo{})

	result, err := svc.ChatSeries(context.Background(), seriesQuery(t, false))
	assert.Nil(t, result)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeSourceUnavailable, appErr.Type)
}

func TestSessionSeries_EndToEnd(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	eventRepo := &fakeEventRepo{events: []domain.Event{
		{ID: "e1", SubjectID: "anon-s1", IPAddress: "1.2.3.4", CreatedAt: base},
		{ID: "e2", SubjectID: "anon-s1", IPAddress: "1.2.3.4", CreatedAt: base.Add(900 * time.Second)},
		{ID: "e3", SubjectID: "anon-s1", IPAddress: "1.2.3.4", CreatedAt: base.Add(3000 * time.Second)},
	}}
	svc := newTestService(t, eventRepo, &fakeAllowListRepo{})

	result, err := svc.SessionSeries(context.Background(), seriesQuery(t, false))
	require.NoError(t, err)

	require.Len(t, result.Current, 1)
	assert.Equal(t, 2, result.Current[0].SessionCount)
	assert.Equal(t, 900.0, result.Current[0].DurationInSeconds)
}

func TestIpUsage_AppliesAllowList(t *testing.T) {
	base := at(t, "2025-03-10T10:00:00Z")
	eventRepo := &fakeEventRepo{events: []domain.Event{
		{ID: "e1", SubjectID: "anon1", IPAddress: "1.1.1.1", CreatedAt: base},
		{ID: "e2", SubjectID: "anon2", IPAddress: "2.2.2.2", CreatedAt: base},
	}}
	allowRepo := &fakeAllowListRepo{entries: []domain.AllowListEntry{{IPAddress: "1.1.1.1", Note: "trusted"}}}
	svc := newTestService(t, eventRepo, allowRepo)

	records, err := svc.IpUsage(context.Background(), domain.IpUsageQuery{Filter: domain.UserFilterAll, ShowInstitutions: true})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2.2.2.2", records[0].IPAddress)
}

func TestIpUsage_UnboundedWindow(t *testing.T) {
	eventRepo := &fakeEventRepo{}
	svc := newTestService(t, eventRepo, &fakeAllowListRepo{})

	_, err := svc.IpUsage(context.Background(), domain.IpUsageQuery{Filter: domain.UserFilterAll})
	require.NoError(t, err)

	require.Len(t, eventRepo.queries, 1)
	assert.Nil(t, eventRepo.queries[0].From)
	assert.Nil(t, eventRepo.queries[0].To)
}

func TestIpUsage_AllowListFailureFailsRequest(t *testing.T) {
	eventRepo := &fakeEventRepo{events: []domain.Event{
		{ID: "e1", SubjectID: "anon1", IPAddress: "1.1.1.1", CreatedAt: at(t, "2025-03-10T10:00:00Z")},
	}}
	allowRepo := &fakeAllowListRepo{err: errors.New("redis down")}
	svc := newTestService(t, eventRepo, allowRepo)

	records, err := svc.IpUsage(context.Background(), domain.IpUsageQuery{Filter: domain.UserFilterAll})
	assert.Nil(t, records)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeSourceUnavailable, appErr.Type)
}
