package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"insights-be/internal/domain"
	"insights-be/pkg/database"
	apperrors "insights-be/pkg/errors"
)

// RangeBound selects the end-boundary convention of a time-range query. The
// upstream queries were inconsistent about `<= to` versus `< to`, so the
// convention is an explicit parameter here instead of a hard-coded guess.
type RangeBound int

const (
	// BoundInclusive keeps events with created_at <= to
	BoundInclusive RangeBound = iota
	// BoundExclusive keeps events with created_at < to
	BoundExclusive
)

// DefaultPageSize is the number of rows requested per page fetch
const DefaultPageSize = 1000

// EventQuery describes one bounded read of the event store. Nil bounds leave
// the window open on that side. The start bound, when set, is always
// inclusive.
type EventQuery struct {
	From            *time.Time
	To              *time.Time
	EndBound        RangeBound
	ExcludeSubjects []string
	PageSize        int
}

// psq is the PostgreSQL statement builder with dollar placeholders
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// eventColumns lists columns returned by event SELECT queries, in scan order
var eventColumns = []string{"id", "subject_id", "ip_address", "thread_id", "created_at"}

// eventRepository reads the append-only event log from PostgreSQL
type eventRepository struct {
	db *database.PostgresDB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.PostgresDB) EventRepository {
	return &eventRepository{db: db}
}

// FetchEvents returns all events matching the query, requesting successive
// offset windows of fixed page size until a page comes back short. Any page
// error aborts the call and discards partial results, so downstream
// aggregates never undercount silently.
func (r *eventRepository) FetchEvents(ctx context.Context, q EventQuery) ([]domain.Event, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	events, err := fetchAllPages(ctx, pageSize, func(ctx context.Context, limit, offset uint64) ([]domain.Event, error) {
		return r.fetchPage(ctx, q, limit, offset)
	})
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError("failed to fetch events", err)
	}

	return events, nil
}

// fetchPage executes one LIMIT/OFFSET window against the events table
func (r *eventRepository) fetchPage(ctx context.Context, q EventQuery, limit, offset uint64) ([]domain.Event, error) {
	query, args, err := buildEventsQuery(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to build events query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.SubjectID,
			&event.IPAddress,
			&event.ThreadID,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading event rows: %w", err)
	}

	return events, nil
}

// buildEventsQuery assembles the SELECT for one page. Rows are ordered by
// (created_at, id) so offset windows are stable across pages.
func buildEventsQuery(q EventQuery, limit, offset uint64) (string, []interface{}, error) {
	qb := psq.Select(eventColumns...).From("events")

	if q.From != nil {
		qb = qb.Where(sq.GtOrEq{"created_at": *q.From})
	}
	if q.To != nil {
		if q.EndBound == BoundExclusive {
			qb = qb.Where(sq.Lt{"created_at": *q.To})
		} else {
			qb = qb.Where(sq.LtOrEq{"created_at": *q.To})
		}
	}
	if len(q.ExcludeSubjects) > 0 {
		qb = qb.Where(sq.NotEq{"subject_id": q.ExcludeSubjects})
	}

	return qb.OrderBy("created_at", "id").Limit(limit).Offset(offset).ToSql()
}

// fetchAllPages loops offset windows until a page returns fewer rows than
// requested. Cancellation is checked between pages; an error on any page
// returns nothing (no partial-success semantics).
func fetchAllPages(ctx context.Context, pageSize int, fetch func(ctx context.Context, limit, offset uint64) ([]domain.Event, error)) ([]domain.Event, error) {
	var all []domain.Event
	var offset uint64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, uint64(pageSize), offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)

		// Termination invariant: a short page means the source is drained.
		if len(page) < pageSize {
			return all, nil
		}
		offset += uint64(pageSize)
	}
}
