package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	client, err := NewClient("invalid://url", "test")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_HashOperations(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.HSet(ctx, KeyAllowList, "10.0.0.1", "campus proxy"))
	require.NoError(t, client.HSet(ctx, KeyAllowList, "10.0.0.2", "monitoring"))

	entries, err := client.HGetAll(ctx, KeyAllowList)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"10.0.0.1": "campus proxy",
		"10.0.0.2": "monitoring",
	}, entries)

	require.NoError(t, client.HDel(ctx, KeyAllowList, "10.0.0.1"))

	entries, err = client.HGetAll(ctx, KeyAllowList)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10.0.0.2": "monitoring"}, entries)
}

func TestClient_HGetAll_Empty(t *testing.T) {
	_, client := setupTestRedis(t)

	entries, err := client.HGetAll(context.Background(), KeyAllowList)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKeyBuilder_Prefixes(t *testing.T) {
	tests := []struct {
		environment string
		expected    string
	}{
		{"production", "prod"},
		{"development", "dev"},
		{"test", "test"},
		{"staging", "staging"},
		{"", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			assert.Equal(t, tt.expected, kb.GetPrefix())
			assert.Equal(t, tt.expected+":allowlist:ips", kb.BuildKey(KeyAllowList))
		})
	}
}
