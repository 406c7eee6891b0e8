package service

import (
	"context"
	"io"

	"insights-be/internal/domain"
)

// AnalyticsService defines the batch analytics operations. Every call reads
// the event window fresh and recomputes; nothing is cached or persisted.
type AnalyticsService interface {
	// ChatSeries returns total events per bucket
	ChatSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SeriesResult, error)

	// ActiveUserSeries returns distinct subjects per bucket, counted on
	// root events only
	ActiveUserSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SeriesResult, error)

	// SessionSeries returns session counts and mean durations per bucket
	SessionSeries(ctx context.Context, q domain.SeriesQuery) (*domain.SessionSeriesResult, error)

	// WriteExportCSV streams the flattened per-bucket metrics as CSV
	WriteExportCSV(ctx context.Context, q domain.SeriesQuery, w io.Writer) error

	// IpUsage returns the filtered, sorted per-IP usage table
	IpUsage(ctx context.Context, q domain.IpUsageQuery) ([]domain.IpUsageRecord, error)
}

// AllowListService manages the user-curated allow-list on behalf of the
// admin surface
type AllowListService interface {
	// List returns all allow-list entries
	List(ctx context.Context) ([]domain.AllowListEntry, error)

	// Put validates the IP literal and stores the entry
	Put(ctx context.Context, ip, note string) error

	// Remove deletes the entry for an IP
	Remove(ctx context.Context, ip string) error
}

// Services aggregates all service interfaces
type Services struct {
	Analytics AnalyticsService
	AllowList AllowListService
}
