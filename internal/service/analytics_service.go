package service

import (
	"context"
	"io"
	"time"

	"insights-be/internal/config"
	"insights-be/internal/domain"
	"insights-be/internal/registry"
	"insights-be/internal/repository"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// analyticsService orchestrates one analytics query: a single (possibly
// paginated) read from the event source followed by pure in-memory
// computation. It holds no mutable state, so concurrent queries need no
// locking.
type analyticsService struct {
	eventRepo        repository.EventRepository
	allowListRepo    repository.AllowListRepository
	institutions     *registry.Registry
	logger           *logger.Logger
	guestPrefix      string
	pageSize         int
	excludedSubjects []string
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	eventRepo repository.EventRepository,
	allowListRepo repository.AllowListRepository,
	institutions *registry.Registry,
	cfg *config.Config,
	log *logger.Logger,
) AnalyticsService {
	return &analyticsService{
		eventRepo:        eventRepo,
		allowListRepo:    allowListRepo,
		institutions:     institutions,
		logger:           log,
		guestPrefix:      cfg.GuestPrefix,
		pageSize:         cfg.EventPageSize,
		excludedSubjects: cfg.ExcludedSubjects,
	}
}

// ChatSeries returns total events per bucket
func (s *analyticsService) ChatSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SeriesResult, error) {
	return s.countSeries(ctx, q, CountEvents)
}

// ActiveUserSeries returns distinct root-event subjects per bucket
func (s *analyticsService) ActiveUserSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SeriesResult, error) {
	return s.countSeries(ctx, q, CountActiveSubjects)
}

// countSeries runs one count aggregation, twice when the caller asked for the
// trailing comparison period. The two series are paired by bucket index; the
// caller computes percentage deltas.
func (s *analyticsService) countSeries(
	ctx context.Context,
	q domain.SeriesQuery,
	aggregate func([]domain.Event, domain.Granularity) []domain.SeriesPoint,
) (*domain.SeriesResult, error) {
	events, err := s.fetchWindow(ctx, &q.From, &q.To, repository.BoundInclusive)
	if err != nil {
		return nil, err
	}

	result := &domain.SeriesResult{Current: aggregate(events, q.Interval)}

	if q.ComparePrevious {
		previous, err := s.fetchPreviousWindow(ctx, q.From, q.To)
		if err != nil {
			return nil, err
		}
		result.Previous = aggregate(previous, q.Interval)
	}

	return result, nil
}

// SessionSeries reconstructs sessions for the window and buckets them
func (s *analyticsService) SessionSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SessionSeriesResult, error) {
	events, err := s.fetchWindow(ctx, &q.From, &q.To, repository.BoundInclusive)
	if err != nil {
		return nil, err
	}

	result := &domain.SessionSeriesResult{
		Current: BuildSessionSeries(ReconstructSessions(events), q.Interval),
	}

	if q.ComparePrevious {
		previous, err := s.fetchPreviousWindow(ctx, q.From, q.To)
		if err != nil {
			return nil, err
		}
		result.Previous = BuildSessionSeries(ReconstructSessions(previous), q.Interval)
	}

	return result, nil
}

// WriteExportCSV streams the flattened per-bucket metrics as CSV
func (s *analyticsService) WriteExportCSV(ctx context.Context, q domain.SeriesQuery, w io.Writer) error {
	events, err := s.fetchWindow(ctx, &q.From, &q.To, repository.BoundInclusive)
	if err != nil {
		return err
	}

	rows := BuildExportRows(events, ReconstructSessions(events), q.Interval)
	return WriteCSV(w, q.Interval, rows)
}

// IpUsage builds the per-IP usage table and applies the filter chain
func (s *analyticsService) IpUsage(ctx context.Context, q domain.IpUsageQuery) ([]domain.IpUsageRecord, error) {
	events, err := s.fetchWindow(ctx, q.From, q.To, repository.BoundInclusive)
	if err != nil {
		return nil, err
	}

	allowList, err := s.allowListRepo.GetAll(ctx)
	if err != nil {
		// Failing open would expose allow-listed IPs, so the request fails.
		return nil, apperrors.NewSourceUnavailableError("failed to load allow-list", err)
	}

	records := BuildIpUsageRecords(events, s.guestPrefix)
	return FilterIpUsage(records, allowList, q.ShowInstitutions, s.isInstitution, q.Filter), nil
}

// isInstitution reports whether any registry prefix contains the IP.
// A failed registry load degrades to "not institutional".
func (s *analyticsService) isInstitution(ip string) bool {
	_, ok := s.institutions.Match(ip)
	return ok
}

// fetchWindow reads one bounded window from the event source
func (s *analyticsService) fetchWindow(ctx context.Context, from, to *time.Time, bound repository.RangeBound) ([]domain.Event, error) {
	events, err := s.eventRepo.FetchEvents(ctx, repository.EventQuery{
		From:            from,
		To:              to,
		EndBound:        bound,
		ExcludeSubjects: s.excludedSubjects,
		PageSize:        s.pageSize,
	})
	if err != nil {
		s.logger.WithError(err).Error("Event source fetch failed")
		return nil, err
	}
	return events, nil
}

// fetchPreviousWindow reads the equal-length window immediately preceding
// [from, to]. Its end bound is exclusive so no event lands in both windows.
func (s *analyticsService) fetchPreviousWindow(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	prevFrom, prevTo := PreviousWindow(from, to)
	return s.fetchWindow(ctx, &prevFrom, &prevTo, repository.BoundExclusive)
}
