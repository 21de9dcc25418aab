package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

// Redis Key设计
const (
	// {prefix}prefs:auto_reconnect -> "1" | "0"
	keyAutoReconnect = "prefs:auto_reconnect"

	// {prefix}prefs:last_device -> ble.Handle JSON
	keyLastDevice = "prefs:last_device"
)

// RedisStore Redis 实现，多实例部署时共享偏好
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore prefix 为空时使用 "walkpad:"
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "walkpad:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) AutoReconnect(ctx context.Context) (bool, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+keyAutoReconnect).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("get auto_reconnect: %w", err)
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("parse auto_reconnect %q: %w", v, err)
	}
	return enabled, true, nil
}

func (r *RedisStore) SetAutoReconnect(ctx context.Context, enabled bool) error {
	if err := r.client.Set(ctx, r.prefix+keyAutoReconnect, strconv.FormatBool(enabled), 0).Err(); err != nil {
		return fmt.Errorf("set auto_reconnect: %w", err)
	}
	return nil
}

func (r *RedisStore) LastDevice(ctx context.Context) (ble.Handle, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+keyLastDevice).Bytes()
	if errors.Is(err, redis.Nil) {
		return ble.Handle{}, false, nil
	}
	if err != nil {
		return ble.Handle{}, false, fmt.Errorf("get last_device: %w", err)
	}
	var h ble.Handle
	if err := json.Unmarshal(raw, &h); err != nil {
		return ble.Handle{}, false, fmt.Errorf("decode last_device: %w", err)
	}
	return h, true, nil
}

func (r *RedisStore) SetLastDevice(ctx context.Context, h ble.Handle) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+keyLastDevice, raw, 0).Err(); err != nil {
		return fmt.Errorf("set last_device: %w", err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
