package prefs

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.AutoReconnect(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "unset preference")

	require.NoError(t, s.SetAutoReconnect(ctx, false))
	enabled, ok, err := s.AutoReconnect(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, enabled)

	_, ok, err = s.LastDevice(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	h := ble.Handle{Address: "C0:FF:EE:00:00:01", Name: "KS-ST-A1P"}
	require.NoError(t, s.SetLastDevice(ctx, h))
	got, ok, err := s.LastDevice(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

// setupTestRedis 连接本地 Redis，不可用时跳过
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore(t *testing.T) {
	client := setupTestRedis(t)
	prefix := "walkpad:test:" + t.Name() + ":"
	ctx := context.Background()
	client.Del(ctx, prefix+keyAutoReconnect, prefix+keyLastDevice)
	t.Cleanup(func() { client.Del(context.Background(), prefix+keyAutoReconnect, prefix+keyLastDevice) })

	exerciseStore(t, NewRedisStore(client, prefix))
}
