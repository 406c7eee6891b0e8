package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-be/internal/domain"
	"insights-be/pkg/redis"
)

func setupAllowListRepo(t *testing.T) AllowListRepository {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewAllowListRepository(client)
}

func TestAllowListRepository_PutAndGetAll(t *testing.T) {
	repo := setupAllowListRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "192.168.1.50", "library terminal"))
	require.NoError(t, repo.Put(ctx, "10.0.0.9", "campus proxy"))

	entries, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AllowListEntry{
		{IPAddress: "10.0.0.9", Note: "campus proxy"},
		{IPAddress: "192.168.1.50", Note: "library terminal"},
	}, entries)
}

func TestAllowListRepository_PutReplacesNote(t *testing.T) {
	repo := setupAllowListRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "10.0.0.9", "old note"))
	require.NoError(t, repo.Put(ctx, "10.0.0.9", "new note"))

	entries, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new note", entries[0].Note)
}

func TestAllowListRepository_AddThenRemoveIsIdempotent(t *testing.T) {
	repo := setupAllowListRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "10.0.0.9", "baseline"))

	before, err := repo.GetAll(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, "203.0.113.7", "temporary"))
	require.NoError(t, repo.Remove(ctx, "203.0.113.7"))

	after, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAllowListRepository_RemoveMissingIsNoError(t *testing.T) {
	repo := setupAllowListRepo(t)

	assert.NoError(t, repo.Remove(context.Background(), "198.51.100.1"))
}
