package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 使用测试用Redis客户端（需要真实Redis实例）
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
		return nil
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisPresence_BindLookupUnbind(t *testing.T) {
	client := setupTestRedis(t)
	p := NewRedisPresence(client, "test:", "gw-1", 10*time.Second, nil)
	ctx := context.Background()
	now := time.Now()

	p.Bind("C0:FF:EE:00:00:01", "sess-1", now)

	info, ok, err := p.Lookup(ctx, "C0:FF:EE:00:00:01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sess-1", info.SessionID)
	assert.Equal(t, "gw-1", info.InstanceID)

	ttl := client.TTL(ctx, "test:session:device:C0:FF:EE:00:00:01").Val()
	assert.Greater(t, ttl, 10*time.Second)

	members := client.SMembers(ctx, "test:session:instance:gw-1:devices").Val()
	assert.Equal(t, []string{"C0:FF:EE:00:00:01"}, members)

	// 其他会话的注销不影响当前登记
	p.Unbind("C0:FF:EE:00:00:01", "sess-0")
	_, ok, err = p.Lookup(ctx, "C0:FF:EE:00:00:01")
	require.NoError(t, err)
	assert.True(t, ok)

	p.Unbind("C0:FF:EE:00:00:01", "sess-1")
	_, ok, err = p.Lookup(ctx, "C0:FF:EE:00:00:01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPresence_HeartbeatThrottled(t *testing.T) {
	client := setupTestRedis(t)
	p := NewRedisPresence(client, "test:", "gw-1", 8*time.Second, nil)
	ctx := context.Background()
	t0 := time.Now()

	p.Bind("pad", "sess-1", t0)
	p.Heartbeat("pad", t0.Add(time.Second))
	info, _, err := p.Lookup(ctx, "pad")
	require.NoError(t, err)
	assert.WithinDuration(t, t0, info.LastSeen, time.Millisecond)

	p.Heartbeat("pad", t0.Add(3*time.Second))
	info, _, err = p.Lookup(ctx, "pad")
	require.NoError(t, err)
	assert.WithinDuration(t, t0.Add(3*time.Second), info.LastSeen, time.Millisecond)

	// 未登记的外设不写入
	p.Heartbeat("other", t0.Add(time.Hour))
	_, ok, err := p.Lookup(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPresence_Cleanup(t *testing.T) {
	client := setupTestRedis(t)
	p := NewRedisPresence(client, "test:", "gw-1", 10*time.Second, nil)
	ctx := context.Background()

	p.Bind("pad-a", "sess-a", time.Now())
	p.Bind("pad-b", "sess-b", time.Now())
	require.NoError(t, p.Cleanup(ctx))

	for _, addr := range []string{"pad-a", "pad-b"} {
		_, ok, err := p.Lookup(ctx, addr)
		require.NoError(t, err)
		assert.False(t, ok, addr)
	}
	assert.Zero(t, client.Exists(ctx, "test:session:instance:gw-1:devices").Val())
}

func TestNewRedisPresenceDefaults(t *testing.T) {
	p := NewRedisPresence(nil, "walkpad:", "", 0, nil)
	assert.NotEmpty(t, p.InstanceID())
	assert.Equal(t, 10*time.Second, p.timeout)
	assert.Equal(t, "walkpad:session:device:pad", p.deviceKey("pad"))
	assert.Equal(t, "walkpad:session:instance:"+p.InstanceID()+":devices", p.instanceKey())
}
