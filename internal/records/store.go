package records

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/taoyao-code/walkpad-gateway/internal/ble"
	"github.com/taoyao-code/walkpad-gateway/internal/protocol/walkpad"
)

// Entry 一条已落库的运动记录
type Entry struct {
	Device     ble.Handle     `json:"device"`
	Record     walkpad.Record `json:"record"`
	ReceivedAt time.Time      `json:"received_at"`
}

// key 设备内唯一键：(on_time, start_time)
func (e Entry) key() string {
	return e.Device.Address + "|" + strconv.Itoa(e.Record.OnTime) + "|" + strconv.Itoa(e.Record.StartTime)
}

// Store 运动记录持久化
type Store interface {
	// Save 写入一条记录；重复记录返回 saved=false 且无错误
	Save(ctx context.Context, e Entry) (saved bool, err error)
	// List 按接收时间倒序返回记录；address 为空表示全部设备
	List(ctx context.Context, address string, limit int) ([]Entry, error)
}

// MemoryStore 进程内实现，未配置数据库时使用
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	seen    map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (m *MemoryStore) Save(_ context.Context, e Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := e.key()
	if _, ok := m.seen[k]; ok {
		return false, nil
	}
	m.seen[k] = struct{}{}
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *MemoryStore) List(_ context.Context, address string, limit int) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if address == "" || e.Device.Address == address {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
