package repository

import (
	"context"
	"fmt"
	"sort"

	"insights-be/internal/domain"
	"insights-be/pkg/redis"
)

// allowListRepository stores the user-curated allow-list in a Redis hash
// (ip -> note). The hash is owned by the admin surface; the analytics core
// reads it once per request.
type allowListRepository struct {
	redisClient *redis.Client
}

// NewAllowListRepository creates a new allow-list repository
func NewAllowListRepository(redisClient *redis.Client) AllowListRepository {
	return &allowListRepository{redisClient: redisClient}
}

// GetAll returns every allow-list entry, sorted by IP for stable output
func (r *allowListRepository) GetAll(ctx context.Context) ([]domain.AllowListEntry, error) {
	fields, err := r.redisClient.HGetAll(ctx, redis.KeyAllowList)
	if err != nil {
		return nil, fmt.Errorf("failed to load allow-list: %w", err)
	}

	entries := make([]domain.AllowListEntry, 0, len(fields))
	for ip, note := range fields {
		entries = append(entries, domain.AllowListEntry{IPAddress: ip, Note: note})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].IPAddress < entries[j].IPAddress
	})

	return entries, nil
}

// Put creates or replaces the entry for an IP
func (r *allowListRepository) Put(ctx context.Context, ip, note string) error {
	if err := r.redisClient.HSet(ctx, redis.KeyAllowList, ip, note); err != nil {
		return fmt.Errorf("failed to store allow-list entry: %w", err)
	}
	return nil
}

// Remove deletes the entry for an IP
func (r *allowListRepository) Remove(ctx context.Context, ip string) error {
	if err := r.redisClient.HDel(ctx, redis.KeyAllowList, ip); err != nil {
		return fmt.Errorf("failed to remove allow-list entry: %w", err)
	}
	return nil
}
