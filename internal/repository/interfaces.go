package repository

import (
	"context"

	"insights-be/internal/domain"
)

// EventRepository defines the read-only adapter over the append-only event
// store. Callers must not assume any global ordering of the returned rows;
// the session reconstructor sorts explicitly.
type EventRepository interface {
	// FetchEvents returns all events in the query window, paginating
	// transparently. A failure on any page aborts the whole call.
	FetchEvents(ctx context.Context, q EventQuery) ([]domain.Event, error)
}

// AllowListRepository defines access to the user-curated IP allow-list.
// The analytics core only reads it; writes serve the admin surface.
type AllowListRepository interface {
	// GetAll returns every allow-list entry
	GetAll(ctx context.Context) ([]domain.AllowListEntry, error)

	// Put creates or replaces the entry for an IP
	Put(ctx context.Context, ip, note string) error

	// Remove deletes the entry for an IP
	Remove(ctx context.Context, ip string) error
}
