// Package prefs 持久化用户偏好：自动重连开关与上次连接的设备
package prefs

import (
	"context"
	"sync"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
)

// Store 偏好存储
type Store interface {
	AutoReconnect(ctx context.Context) (enabled bool, ok bool, err error)
	SetAutoReconnect(ctx context.Context, enabled bool) error
	LastDevice(ctx context.Context) (ble.Handle, bool, error)
	SetLastDevice(ctx context.Context, h ble.Handle) error
}

// MemoryStore 进程内实现，未配置 Redis 时使用
type MemoryStore struct {
	mu            sync.RWMutex
	autoReconnect *bool
	lastDevice    *ble.Handle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AutoReconnect(context.Context) (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.autoReconnect == nil {
		return false, false, nil
	}
	return *m.autoReconnect, true, nil
}

func (m *MemoryStore) SetAutoReconnect(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = &enabled
	return nil
}

func (m *MemoryStore) LastDevice(context.Context) (ble.Handle, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastDevice == nil {
		return ble.Handle{}, false, nil
	}
	return *m.lastDevice, true, nil
}

func (m *MemoryStore) SetLastDevice(_ context.Context, h ble.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDevice = &h
	return nil
}
